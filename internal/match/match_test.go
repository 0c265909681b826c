package match

import "testing"

func TestBeginEntersCountdown(t *testing.T) {
	m := New(Settings{RoundsToWin: 3})
	ev := m.Begin(1000)

	if m.Phase != PhaseCountdown {
		t.Fatalf("phase = %v, want PhaseCountdown", m.Phase)
	}
	if ev.Phase != PhaseCountdown {
		t.Errorf("event phase = %v, want PhaseCountdown", ev.Phase)
	}
	if ev.EndsAt != 1000+CountdownMs {
		t.Errorf("EndsAt = %d, want %d", ev.EndsAt, 1000+CountdownMs)
	}
}

func TestTickCountdownToActive(t *testing.T) {
	m := New(Settings{RoundsToWin: 3})
	m.Begin(0)

	if ev := m.Tick(CountdownMs - 1); ev != nil {
		t.Fatalf("expected no transition before countdown ends, got %+v", ev)
	}

	ev := m.Tick(CountdownMs)
	if ev == nil || ev.Phase != PhaseActive {
		t.Fatalf("expected transition to PhaseActive, got %+v", ev)
	}
	if !m.RoundActive {
		t.Error("RoundActive should be true once PhaseActive begins")
	}
}

// TestRoundBannerWaitsFullDuration guards against the regression where
// endRound never armed phaseEndAt: Tick used to advance out of
// PhaseRoundBanner on the very next call instead of waiting RoundBannerMs.
func TestRoundBannerWaitsFullDuration(t *testing.T) {
	m := New(Settings{RoundsToWin: 3})
	m.Begin(0)
	m.Tick(CountdownMs) // -> PhaseActive

	ev := m.EndRoundByElimination(5000, "alice")
	if ev.Winner != "alice" {
		t.Fatalf("winner = %q, want alice", ev.Winner)
	}
	if m.Phase != PhaseRoundBanner {
		t.Fatalf("phase = %v, want PhaseRoundBanner", m.Phase)
	}

	if transition := m.Tick(5001); transition != nil {
		t.Fatalf("expected no transition 1ms into the banner, got %+v", transition)
	}
	if transition := m.Tick(5000 + RoundBannerMs - 1); transition != nil {
		t.Fatalf("expected no transition just before the banner ends, got %+v", transition)
	}

	transition := m.Tick(5000 + RoundBannerMs)
	if transition == nil || transition.Phase != PhaseCountdown {
		t.Fatalf("expected transition back to countdown once the banner elapses, got %+v", transition)
	}
}

func TestHeroSelectTimesOutIntoCountdown(t *testing.T) {
	m := New(Settings{RoundsToWin: 3, HeroSelectSeconds: 1})
	m.ArmHeroSelect(0, []string{"alice", "bob"})

	if ev := m.Tick(999); ev != nil {
		t.Fatalf("expected no transition before the deadline, got %+v", ev)
	}
	ev := m.Tick(1000)
	if ev == nil || ev.Phase != PhaseCountdown {
		t.Fatalf("expected timeout transition to PhaseCountdown, got %+v", ev)
	}
}

func TestHeroSelectUnarmedNeverTimesOut(t *testing.T) {
	m := New(Settings{RoundsToWin: 3, HeroSelectSeconds: 1})
	if ev := m.Tick(100000); ev != nil {
		t.Fatalf("expected no transition without ArmHeroSelect, got %+v", ev)
	}
	if m.Phase != PhaseHeroSelect {
		t.Fatalf("phase = %v, want PhaseHeroSelect", m.Phase)
	}
}

func TestConfirmHeroReturnsTrueOnlyOnceAllConfirm(t *testing.T) {
	m := New(Settings{RoundsToWin: 3, HeroSelectSeconds: 15})
	m.ArmHeroSelect(0, []string{"alice", "bob"})

	if m.ConfirmHero("alice") {
		t.Fatal("expected false with bob still unconfirmed")
	}
	if !m.ConfirmHero("bob") {
		t.Fatal("expected true once every registered peer has confirmed")
	}
}

func TestConfirmHeroIgnoresUnregisteredPeer(t *testing.T) {
	m := New(Settings{RoundsToWin: 3, HeroSelectSeconds: 15})
	m.ArmHeroSelect(0, []string{"alice"})

	if m.ConfirmHero("mallory") {
		t.Fatal("expected false for a peer ArmHeroSelect never registered")
	}
}

func TestRecordKillEndsFreeForAllRoundAtKillLimit(t *testing.T) {
	m := New(Settings{FreeForAll: true, KillLimit: 2})
	m.Begin(0)
	m.Tick(CountdownMs)

	if ev := m.RecordKill(1000, "alice", "bob"); ev != nil {
		t.Fatalf("expected no round end after first kill, got %+v", ev)
	}
	ev := m.RecordKill(2000, "alice", "bob")
	if ev == nil {
		t.Fatal("expected round end once kill limit is reached")
	}
	if ev.Winner != "alice" {
		t.Errorf("winner = %q, want alice", ev.Winner)
	}
	if ev.Scores["alice"].Kills != 2 {
		t.Errorf("alice kills = %d, want 2", ev.Scores["alice"].Kills)
	}
	if m.Phase != PhaseRoundBanner {
		t.Fatalf("phase = %v, want PhaseRoundBanner", m.Phase)
	}
}

func TestEndRoundByEliminationNoopOutsideActive(t *testing.T) {
	m := New(Settings{RoundsToWin: 3})
	// still in heroSelect
	ev := m.EndRoundByElimination(0, "alice")
	if ev.Winner != "" || ev.Scores != nil {
		t.Fatalf("expected zero-value event outside PhaseActive, got %+v", ev)
	}
	if m.Phase != PhaseHeroSelect {
		t.Fatalf("phase should be unchanged, got %v", m.Phase)
	}
}

func TestMatchCompletesAtRoundsToWin(t *testing.T) {
	m := New(Settings{RoundsToWin: 2})
	m.Begin(0)
	m.Tick(CountdownMs)

	m.EndRoundByElimination(1000, "alice")
	m.Tick(1000 + RoundBannerMs) // -> countdown
	m.Tick(1000 + RoundBannerMs + CountdownMs) // -> active

	ev := m.EndRoundByElimination(9000, "alice")
	if ev.Scores["alice"].Rounds != 2 {
		t.Fatalf("alice rounds = %d, want 2", ev.Scores["alice"].Rounds)
	}

	transition := m.Tick(9000 + RoundBannerMs)
	if transition == nil || transition.Phase != PhaseMatchOver {
		t.Fatalf("expected match over once rounds-to-win is reached, got %+v", transition)
	}
}

func TestFireSuppressedDuringCountdownAndGraceWindow(t *testing.T) {
	m := New(Settings{RoundsToWin: 3})
	m.Begin(0)

	if !m.FireSuppressed(100) {
		t.Error("fire should be suppressed during countdown")
	}

	m.Tick(CountdownMs) // -> active, phaseEndAt = CountdownMs

	if !m.FireSuppressed(CountdownMs + WeaponArmGraceMs - 1) {
		t.Error("fire should still be suppressed inside the grace window")
	}
	if m.FireSuppressed(CountdownMs + WeaponArmGraceMs) {
		t.Error("fire should no longer be suppressed once the grace window elapses")
	}
}
