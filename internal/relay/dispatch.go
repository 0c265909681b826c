package relay

import (
	"encoding/json"

	"github.com/lanarena/relay/internal/observability"
	"github.com/lanarena/relay/internal/room"
)

// OnGameStart is invoked once a room's ready gate passes and startGame is
// accepted; cmd/relayserver registers a hook that logs the start. Peers
// are host-first, matching room.Manager.StartGame's return order.
type OnGameStart func(roomID string, peers []string)

// SetGameStartHook registers the callback fired on a successful
// startGame. Call once during wiring, before ServeWS traffic begins.
func (h *Hub) SetGameStartHook(fn OnGameStart) { h.onGameStart = fn }

// hostBroadcastTypes are message types that only a room's host may send;
// the hub forwards them verbatim to every other peer in the room without
// interpreting the payload, since the host is the sole source of truth
// for simulation state.
var hostBroadcastTypes = map[string]bool{
	"snapshot":        true,
	"shot":            true,
	"startRound":      true,
	"roundResult":     true,
	"matchOver":       true,
	"startHeroSelect": true,
	"heroesConfirmed": true,
	"ffaKill":         true,
	"melee":           true,
	"damage":          true,
	"phaseChange":     true,
}

// ackError maps a room-manager sentinel to the wire error string clients
// display verbatim; anything unrecognized falls back to err.Error().
func ackError(err error) string {
	switch err {
	case room.ErrInvalidName:
		return "Invalid roomId"
	case room.ErrNotFound:
		return "Room not found"
	case room.ErrConflict:
		return "Room already exists"
	case room.ErrCapacity:
		return "Room full"
	case room.ErrReadyGate:
		return "Not all players are ready"
	}
	return err.Error()
}

func (h *Hub) dispatch(p *Peer, env Envelope) {
	switch env.Type {
	case "createRoom":
		h.handleCreateRoom(p, env.Data)
	case "joinRoom":
		h.handleJoinRoom(p, env.Data)
	case "leaveRoom":
		h.handleLeaveRoom(p)
	case "setReady":
		h.handleSetReady(p, env.Data)
	case "startGame":
		h.handleStartGame(p)
	case "input":
		h.handleInput(p, env.Data)
	case "heroSelect":
		h.handleHeroSelect(p, env.Data)
	case "settings":
		h.handleSettings(p, env.Data)
	default:
		if hostBroadcastTypes[env.Type] {
			h.handleHostBroadcast(p, env.Type, env.Data)
			return
		}
		// Unknown message types are ignored rather than closing the
		// connection, so older/newer clients stay compatible.
	}
}

func (h *Hub) handleCreateRoom(p *Peer, data json.RawMessage) {
	var msg CreateRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendAck(p, false, "malformed createRoom")
		return
	}

	settings := room.Settings{
		RoundsToWin: msg.Settings.RoundsToWin,
		KillLimit:   msg.Settings.KillLimit,
		MaxPlayers:  msg.Settings.MaxPlayers,
		MapName:     msg.Settings.MapName,
	}
	if settings.MaxPlayers == 0 {
		settings = room.DefaultSettings()
		settings.MapName = msg.Settings.MapName
	}

	r, err := h.rooms.CreateRoom(msg.RoomID, p.ID, msg.Name, settings)
	if err != nil {
		h.sendAck(p, false, ackError(err))
		return
	}

	p.setRoom(msg.RoomID, msg.Name)
	h.addToRoom(msg.RoomID, p)
	h.send(p, "ack", AckMsg{
		OK:           true,
		Role:         "host",
		PlayerNumber: 1,
		Settings:     settingsMsg(r.SettingsSnapshot()),
	})
	if h.events != nil {
		h.events.Emit(EventRoomCreated, msg.RoomID, p.ID, nil)
	}
}

func settingsMsg(s room.Settings) *RoomSettingsMsg {
	return &RoomSettingsMsg{
		RoundsToWin: s.RoundsToWin,
		KillLimit:   s.KillLimit,
		MaxPlayers:  s.MaxPlayers,
		MapName:     s.MapName,
	}
}

func (h *Hub) handleJoinRoom(p *Peer, data json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendAck(p, false, "malformed joinRoom")
		return
	}

	r, err := h.rooms.JoinRoom(msg.RoomID, p.ID, msg.Name)
	if err != nil {
		h.sendAck(p, false, ackError(err))
		return
	}

	p.setRoom(msg.RoomID, msg.Name)
	h.addToRoom(msg.RoomID, p)

	playerNumber, hostID := r.MemberInfo(p.ID)
	h.send(p, "ack", AckMsg{
		OK:           true,
		Role:         "client",
		PlayerNumber: playerNumber,
		HostID:       hostID,
		Settings:     settingsMsg(r.SettingsSnapshot()),
	})
}

func (h *Hub) handleLeaveRoom(p *Peer) {
	roomID := p.getRoom()
	if roomID == "" {
		return
	}
	h.rooms.LeaveRoom(roomID, p.ID)

	h.mu.Lock()
	if m := h.roomPeers[roomID]; m != nil {
		delete(m, p.ID)
	}
	h.mu.Unlock()
	p.setRoom("", "")
}

func (h *Hub) handleSetReady(p *Peer, data json.RawMessage) {
	roomID := p.getRoom()
	if roomID == "" {
		return
	}
	var msg SetReadyMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	h.rooms.SetReady(roomID, p.ID, msg.Ready)
}

func (h *Hub) handleStartGame(p *Peer) {
	roomID := p.getRoom()
	if roomID == "" {
		h.sendAck(p, false, "not in a room")
		return
	}

	peers, err := h.rooms.StartGame(roomID, p.ID)
	if err != nil {
		h.sendAck(p, false, ackError(err))
		return
	}

	h.sendAck(p, true, "")

	settings := RoomSettingsMsg{}
	if r, ok := h.rooms.Get(roomID); ok {
		s := r.SettingsSnapshot()
		settings = RoomSettingsMsg{
			RoundsToWin: s.RoundsToWin,
			KillLimit:   s.KillLimit,
			MaxPlayers:  s.MaxPlayers,
			MapName:     s.MapName,
		}
	}
	h.broadcastRoom(roomID, "", "gameStarted", GameStartedMsg{Players: peers, Settings: settings})

	if h.onGameStart != nil {
		h.onGameStart(roomID, peers)
	}
}

// inputEnvelope wraps a forwarded input with the sending peer's id, since
// the host needs to know whose command this is.
type inputEnvelope struct {
	PeerID string          `json:"peerId"`
	Input  json.RawMessage `json:"input"`
}

func (h *Hub) handleInput(p *Peer, data json.RawMessage) {
	roomID := p.getRoom()
	if roomID == "" {
		return
	}
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	if r.IsHost(p.ID) {
		return // the host doesn't relay input to itself
	}

	host, ok := h.peer(r.HostPeer)
	if !ok {
		return
	}
	h.send(host, "input", inputEnvelope{PeerID: p.ID, Input: data})
	observability.RecordInputMessage()
}

// handleHeroSelect forwards heroSelect in both directions: a non-host
// peer's pick goes to the host only, wrapped with the sender's id so the
// host knows whose selection changed; the host's own heroSelect
// (broadcasting the confirmed roster back out) goes to every other peer
// in the room, unwrapped.
func (h *Hub) handleHeroSelect(p *Peer, data json.RawMessage) {
	roomID := p.getRoom()
	if roomID == "" {
		return
	}
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}

	if r.IsHost(p.ID) {
		h.broadcastRoom(roomID, p.ID, "heroSelect", data)
		return
	}

	host, ok := h.peer(r.HostPeer)
	if !ok {
		return
	}
	h.send(host, "heroSelect", inputEnvelope{PeerID: p.ID, Input: data})
}

// handleSettings lets the host change room settings in the lobby: the
// server applies them (clamped) so its own capacity checks stay correct,
// then relays the message to the rest of the room. A non-host sender is
// silently dropped, same as any other host-only event.
func (h *Hub) handleSettings(p *Peer, data json.RawMessage) {
	roomID := p.getRoom()
	if roomID == "" {
		return
	}
	var msg RoomSettingsMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	err := h.rooms.UpdateSettings(roomID, p.ID, room.Settings{
		RoundsToWin: msg.RoundsToWin,
		KillLimit:   msg.KillLimit,
		MaxPlayers:  msg.MaxPlayers,
		MapName:     msg.MapName,
	})
	if err != nil {
		return
	}
	h.broadcastRoom(roomID, p.ID, "settings", data)
}

// handleHostBroadcast forwards a host-originated simulation message to
// every other peer in the room, unparsed. Only the room's current host
// may trigger this; a non-host sending one of these types is ignored.
func (h *Hub) handleHostBroadcast(p *Peer, msgType string, data json.RawMessage) {
	roomID := p.getRoom()
	if roomID == "" {
		return
	}
	r, ok := h.rooms.Get(roomID)
	if !ok || !r.IsHost(p.ID) {
		return
	}
	h.broadcastRoom(roomID, p.ID, msgType, data)
	if msgType == "snapshot" {
		observability.RecordSnapshotBroadcast()
	}
}
