// Package match implements the round/match state machine:
// heroSelect -> countdown -> active -> roundBanner -> matchOver, driven by
// wall-clock timers on the host. No peer other than the host advances
// phases; clients only render the events this package's Tick emits.
package match

// Phase is one state in the round/match state machine.
type Phase int

const (
	PhaseHeroSelect Phase = iota
	PhaseCountdown
	PhaseActive
	PhaseRoundBanner
	PhaseMatchOver
)

func (p Phase) String() string {
	switch p {
	case PhaseHeroSelect:
		return "heroSelect"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhaseRoundBanner:
		return "roundBanner"
	case PhaseMatchOver:
		return "matchOver"
	default:
		return "unknown"
	}
}

// Timing constants for phase transitions.
const (
	DefaultHeroSelectSeconds = 15
	CountdownMs              = 3000
	WeaponArmGraceMs         = 300 // suppresses fire for this long past countdown-end
	RoundBannerMs            = 1200
)

// Settings mirrors the subset of room.Settings the match state machine
// needs to decide victory and timing.
type Settings struct {
	HeroSelectSeconds int
	RoundsToWin       int // elimination modes
	KillLimit         int // free-for-all mode
	FreeForAll        bool
}

// Score is one side's round/kill tally. For team modes, Side is the team
// id; for free-for-all, Side is the peer id.
type Score struct {
	Side   string
	Rounds int
	Kills  int
	Deaths int
}

// RoundResultEvent is emitted on entry to PhaseRoundBanner.
type RoundResultEvent struct {
	Winner string
	Scores map[string]Score
}

// MatchOverEvent is emitted when PhaseMatchOver is reached.
type MatchOverEvent struct {
	FinalScores map[string]Score
}

// PhaseChangeEvent is emitted on every transition so clients can render
// banners/countdowns/hero-select UI.
type PhaseChangeEvent struct {
	Phase  Phase
	EndsAt int64 // ms, 0 if the phase has no fixed end
}

// Match is owned by the host peer: it tracks phase, timers, and per-side
// score for one room's games. RoundActive is true only during PhaseActive.
type Match struct {
	Settings    Settings
	Phase       Phase
	RoundActive bool

	phaseEndAt int64 // ms, monotonic clock; 0 means "no timer, external trigger only"
	scores     map[string]Score

	pendingHeroPicks map[string]bool // peers that still owe a confirmed hero pick
	confirmedHeroes  map[string]bool

	Leaderboard *Leaderboard
}

// New starts a match in heroSelect with the given settings.
func New(settings Settings) *Match {
	if settings.HeroSelectSeconds <= 0 {
		settings.HeroSelectSeconds = DefaultHeroSelectSeconds
	}
	return &Match{
		Settings:    settings,
		Phase:       PhaseHeroSelect,
		scores:      make(map[string]Score),
		Leaderboard: NewLeaderboard(),
	}
}

// Begin transitions out of heroSelect into countdown, called either when
// every peer has confirmed a hero or the hero-select timer expires.
func (m *Match) Begin(nowMs int64) PhaseChangeEvent {
	m.Phase = PhaseCountdown
	m.phaseEndAt = nowMs + CountdownMs
	return PhaseChangeEvent{Phase: m.Phase, EndsAt: m.phaseEndAt}
}

// HeroSelectDeadline returns the wall-clock ms at which heroSelect times
// out, given the tick at which it started.
func (m *Match) HeroSelectDeadline(startedAtMs int64) int64 {
	return startedAtMs + int64(m.Settings.HeroSelectSeconds)*1000
}

// ArmHeroSelect starts the heroSelect timeout clock and records which
// peers owe a confirmed hero pick before ConfirmHero can report
// all-confirmed early. Call once every peer in the room is known, before
// the first Tick.
func (m *Match) ArmHeroSelect(nowMs int64, peerIDs []string) {
	m.phaseEndAt = m.HeroSelectDeadline(nowMs)
	m.pendingHeroPicks = make(map[string]bool, len(peerIDs))
	for _, id := range peerIDs {
		m.pendingHeroPicks[id] = true
	}
	m.confirmedHeroes = make(map[string]bool, len(peerIDs))
}

// ConfirmHero records peerID as having locked in a hero pick. Returns
// true once every peer ArmHeroSelect registered has confirmed, which the
// caller should treat as the signal to call Begin immediately rather than
// waiting for the timeout.
func (m *Match) ConfirmHero(peerID string) bool {
	if !m.pendingHeroPicks[peerID] {
		return false
	}
	m.confirmedHeroes[peerID] = true
	for id := range m.pendingHeroPicks {
		if !m.confirmedHeroes[id] {
			return false
		}
	}
	return true
}

// FireSuppressed reports whether fire input should be ignored: input stays
// disabled through countdown, plus a short grace period past its end to
// absorb a stuck fire button.
func (m *Match) FireSuppressed(nowMs int64) bool {
	if m.Phase == PhaseCountdown {
		return true
	}
	if m.Phase == PhaseActive && m.phaseEndAt != 0 && nowMs < m.phaseEndAt+WeaponArmGraceMs {
		return true
	}
	return false
}

// Tick advances timer-driven transitions. Callers pass nowMs from the same
// monotonic clock used elsewhere in the host loop. Returns any phase
// transition event produced this tick (nil if none).
func (m *Match) Tick(nowMs int64) *PhaseChangeEvent {
	switch m.Phase {
	case PhaseHeroSelect:
		if m.phaseEndAt != 0 && nowMs >= m.phaseEndAt {
			ev := m.Begin(nowMs)
			return &ev
		}
	case PhaseCountdown:
		if nowMs >= m.phaseEndAt {
			m.Phase = PhaseActive
			m.RoundActive = true
			// phaseEndAt marks when the arm-grace window started, i.e. now.
			m.phaseEndAt = nowMs
			ev := PhaseChangeEvent{Phase: m.Phase}
			return &ev
		}
	case PhaseRoundBanner:
		if nowMs >= m.phaseEndAt {
			if m.matchComplete() {
				m.Phase = PhaseMatchOver
				ev := PhaseChangeEvent{Phase: m.Phase}
				return &ev
			}
			m.Phase = PhaseCountdown
			m.phaseEndAt = nowMs + CountdownMs
			ev := PhaseChangeEvent{Phase: m.Phase, EndsAt: m.phaseEndAt}
			return &ev
		}
	}
	return nil
}

// RecordKill updates kill/death tallies for a kill that occurred during
// PhaseActive. victimSide and killerSide are peer ids (FFA) or team ids.
// Returns the roundResult event if this kill reached the FFA kill limit
// and ended the round, nil otherwise.
func (m *Match) RecordKill(nowMs int64, killerSide, victimSide string) *RoundResultEvent {
	k := m.scores[killerSide]
	k.Side = killerSide
	k.Kills++
	m.scores[killerSide] = k

	v := m.scores[victimSide]
	v.Side = victimSide
	v.Deaths++
	m.scores[victimSide] = v

	if m.Leaderboard != nil {
		m.Leaderboard.UpdateScore(killerSide, m.scores[killerSide].Kills, m.scores[killerSide].Deaths)
		m.Leaderboard.UpdateScore(victimSide, m.scores[victimSide].Kills, m.scores[victimSide].Deaths)
	}

	if m.Settings.FreeForAll && k.Kills >= m.Settings.KillLimit {
		ev := m.endRound(nowMs, killerSide)
		return &ev
	}
	return nil
}

// EndRoundByElimination ends the active round because winnerSide is the
// last side standing (non-FFA elimination victory predicate), returning
// the roundResult event to emit. Returns the zero event if the round
// wasn't active (caller should check Phase before relying on the result
// in that case).
func (m *Match) EndRoundByElimination(nowMs int64, winnerSide string) RoundResultEvent {
	return m.endRound(nowMs, winnerSide)
}

// endRound transitions PhaseActive -> PhaseRoundBanner, tallies the round
// win, and arms the banner duration timer so Tick advances it exactly
// once, RoundBannerMs later.
func (m *Match) endRound(nowMs int64, winnerSide string) RoundResultEvent {
	if m.Phase != PhaseActive {
		return RoundResultEvent{}
	}
	s := m.scores[winnerSide]
	s.Side = winnerSide
	if !m.Settings.FreeForAll {
		s.Rounds++
	}
	m.scores[winnerSide] = s

	m.RoundActive = false
	m.Phase = PhaseRoundBanner
	m.phaseEndAt = nowMs + RoundBannerMs

	return RoundResultEvent{Winner: winnerSide, Scores: m.cloneScores()}
}

// matchComplete reports whether any side has reached the configured
// victory threshold.
func (m *Match) matchComplete() bool {
	for _, s := range m.scores {
		if m.Settings.FreeForAll {
			if s.Kills >= m.Settings.KillLimit {
				return true
			}
		} else if s.Rounds >= m.Settings.RoundsToWin {
			return true
		}
	}
	return false
}

// FinalScores returns the terminal MatchOverEvent payload.
func (m *Match) FinalScores() MatchOverEvent {
	return MatchOverEvent{FinalScores: m.cloneScores()}
}

func (m *Match) cloneScores() map[string]Score {
	out := make(map[string]Score, len(m.scores))
	for k, v := range m.scores {
		out[k] = v
	}
	return out
}
