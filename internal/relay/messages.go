// Package relay implements the WebSocket transport: a typed JSON message
// envelope, per-peer ordered delivery, and the relay hub that forwards
// host-authoritative broadcasts to every other peer in a room without
// buffering or replaying anything itself.
package relay

import "encoding/json"

// Envelope is the wire shape every message shares: a type tag plus a
// type-specific payload, switched on directly rather than dispatched
// through reflection.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client -> server payloads.
type (
	CreateRoomMsg struct {
		RoomID   string `json:"roomId"`
		Name     string `json:"name"`
		Settings struct {
			RoundsToWin int    `json:"roundsToWin"`
			KillLimit   int    `json:"killLimit"`
			MaxPlayers  int    `json:"maxPlayers"`
			MapName     string `json:"mapName"`
		} `json:"settings"`
	}

	JoinRoomMsg struct {
		RoomID string `json:"roomId"`
		Name   string `json:"name"`
	}

	SetReadyMsg struct {
		Ready bool `json:"ready"`
	}

	StartGameMsg struct{}

	LeaveRoomMsg struct{}

	// InputMsg carries one tick's movement/look/fire command, forwarded
	// verbatim to the host (relay never interprets it).
	InputMsg struct {
		Seq       uint64  `json:"seq"`
		MoveX     float64 `json:"moveX"`
		MoveZ     float64 `json:"moveZ"`
		LookYaw   float64 `json:"lookYaw"`
		LookPitch float64 `json:"lookPitch"`
		Sprint    bool    `json:"sprint"`
		Jump      bool    `json:"jump"`
		Fire      bool    `json:"fire"`
		Reload    bool    `json:"reload"`
		Melee     bool    `json:"melee"`
	}

	// HeroSelectMsg flows both ways: a peer picking a hero sends it to the
	// host with Confirmed set once they've locked it in; the host
	// broadcasts the same shape back out (PeerID identifying whose pick
	// changed) so every client can render the roster.
	HeroSelectMsg struct {
		PeerID    string `json:"peerId"`
		HeroID    string `json:"heroId"`
		Confirmed bool   `json:"confirmed"`
	}
)

// Server -> client payloads.
type (
	PlayerListMsg struct {
		RoomID  string           `json:"roomId"`
		Players []PlayerListItem `json:"players"`
	}

	PlayerListItem struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Ready  bool   `json:"ready"`
		IsHost bool   `json:"isHost"`
	}

	ClientJoinedMsg struct {
		PeerID string `json:"peerId"`
		Name   string `json:"name"`
	}

	ClientLeftMsg struct {
		PeerID string `json:"peerId"`
	}

	RoomClosedMsg struct {
		Reason string `json:"reason"`
	}

	// AckMsg answers createRoom/joinRoom/startGame. Role, PlayerNumber,
	// HostID, and Settings are set only on a successful createRoom or
	// joinRoom; startGame acks carry just OK/Error.
	AckMsg struct {
		OK           bool             `json:"ok"`
		Error        string           `json:"error,omitempty"`
		Role         string           `json:"role,omitempty"` // "host" or "client"
		PlayerNumber int              `json:"playerNumber,omitempty"`
		HostID       string           `json:"hostId,omitempty"`
		Settings     *RoomSettingsMsg `json:"settings,omitempty"`
	}

	GameStartedMsg struct {
		Players  []string        `json:"players"`
		Settings RoomSettingsMsg `json:"settings"`
	}

	RoomSettingsMsg struct {
		RoundsToWin int    `json:"roundsToWin"`
		KillLimit   int    `json:"killLimit"`
		MaxPlayers  int    `json:"maxPlayers"`
		MapName     string `json:"mapName"`
	}

	// SnapshotMsg, ShotMsg, StartRoundMsg, RoundResultMsg, MatchOverMsg,
	// StartHeroSelectMsg and FFAKillMsg are produced by the host's
	// simhost and relayed opaquely: the relay never parses their
	// payload, only forwards the raw bytes the host sent, so these
	// struct tags exist purely to document the wire contract for client
	// implementers.
	SnapshotMsg struct {
		T        int64            `json:"t"`
		Entities []EntitySnapshot `json:"entities"`
	}

	EntitySnapshot struct {
		ID          string  `json:"id"`
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
		Z           float64 `json:"z"`
		Yaw         float64 `json:"yaw"`
		Pitch       float64 `json:"pitch"`
		Health      int     `json:"health"`
		Ammo        int     `json:"ammo"`
		MagSize     int     `json:"magSize"`
		Reloading   bool    `json:"reloading"`
		ReloadEndAt int64   `json:"reloadEndAt"`
		Alive       bool    `json:"alive"`
	}
)

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: raw})
}
