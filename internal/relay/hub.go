package relay

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lanarena/relay/internal/observability"
	"github.com/lanarena/relay/internal/room"
)

const (
	maxWSConnectionsTotal = 500
	maxWSConnectionsPerIP = 10

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Peer is one connected WebSocket client: a room member once it has
// joined or created a room, anonymous (roomID == "") until then.
type Peer struct {
	ID   string
	IP   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	roomID string
	name   string
}

func (p *Peer) setRoom(roomID, name string) {
	p.mu.Lock()
	p.roomID, p.name = roomID, name
	p.mu.Unlock()
}

func (p *Peer) getRoom() (roomID string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.roomID
}

// Hub relays typed JSON messages between peers within a room: client
// input to the host, host broadcasts (snapshot, shot, round/match events)
// to every other peer. It never buffers or replays a message — a peer
// that misses a broadcast while reconnecting simply waits for the next
// one.
type Hub struct {
	rooms  *room.Manager
	events *EventLog

	wsLimiter *WebSocketRateLimiter

	mu        sync.RWMutex
	peers     map[string]*Peer            // peerID -> Peer
	roomPeers map[string]map[string]*Peer // roomID -> peerID -> Peer

	onGameStart OnGameStart
}

// NewHub constructs a Hub bound to a room manager and event log. The hub
// itself implements room.Broadcaster and should be passed to
// room.NewManager.
func NewHub(rooms *room.Manager, events *EventLog) *Hub {
	return &Hub{
		rooms:     rooms,
		events:    events,
		wsLimiter: NewWebSocketRateLimiter(maxWSConnectionsPerIP),
		peers:     make(map[string]*Peer),
		roomPeers: make(map[string]map[string]*Peer),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("relay: rejected websocket origin %q", origin)
		observability.RecordConnectionRejected("origin")
		return false
	},
}

// ServeWS upgrades the HTTP connection and spins up the peer's
// reader/writer goroutines. Mount at the relay's WebSocket route.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	h.mu.RLock()
	total := len(h.peers)
	h.mu.RUnlock()
	if total >= maxWSConnectionsTotal {
		observability.RecordConnectionRejected("ws_total_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.wsLimiter.Allow(ip) {
		observability.RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many connections from your address", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.wsLimiter.Release(ip)
		return
	}

	peer := &Peer{ID: newPeerID(), IP: ip, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.peers[peer.ID] = peer
	h.mu.Unlock()
	observability.SetWSConnectionsActive(len(h.peers))

	go h.writePump(peer)
	go h.readPump(peer)
}

func newPeerID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (h *Hub) readPump(p *Peer) {
	defer h.disconnect(p)

	p.conn.SetReadLimit(32 * 1024)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		h.dispatch(p, env)
	}
}

func (h *Hub) writePump(p *Peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) disconnect(p *Peer) {
	if roomID := p.getRoom(); roomID != "" {
		h.rooms.LeaveRoom(roomID, p.ID)
		h.mu.Lock()
		if m := h.roomPeers[roomID]; m != nil {
			delete(m, p.ID)
			if len(m) == 0 {
				delete(h.roomPeers, roomID)
			}
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	delete(h.peers, p.ID)
	remaining := len(h.peers)
	h.mu.Unlock()

	close(p.send)
	h.wsLimiter.Release(p.IP)
	observability.SetWSConnectionsActive(remaining)
}

func (h *Hub) peer(id string) (*Peer, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.peers[id]
	return p, ok
}

func (h *Hub) addToRoom(roomID string, p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.roomPeers[roomID]
	if !ok {
		m = make(map[string]*Peer)
		h.roomPeers[roomID] = m
	}
	m[p.ID] = p
}

// send marshals and enqueues one message for delivery to p. Enqueue is
// non-blocking: a slow reader drops the message rather than stall the hub.
func (h *Hub) send(p *Peer, msgType string, payload any) {
	raw, err := encode(msgType, payload)
	if err != nil {
		return
	}
	select {
	case p.send <- raw:
	default:
		log.Printf("relay: dropping %s to peer %s, send buffer full", msgType, p.ID)
	}
}

func (h *Hub) sendAck(p *Peer, ok bool, errMsg string) {
	h.send(p, "ack", AckMsg{OK: ok, Error: errMsg})
}

// broadcastRoom sends a message to every peer in roomID except excludeID
// (pass "" to include everyone).
func (h *Hub) broadcastRoom(roomID, excludeID, msgType string, payload any) {
	raw, err := encode(msgType, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	peers := make([]*Peer, 0, len(h.roomPeers[roomID]))
	for id, p := range h.roomPeers[roomID] {
		if id == excludeID {
			continue
		}
		peers = append(peers, p)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		select {
		case p.send <- raw:
		default:
			log.Printf("relay: dropping %s to peer %s, send buffer full", msgType, p.ID)
		}
	}
}

// --- room.Broadcaster implementation ---

func toPlayerListItems(list []room.PlayerListEntry) []PlayerListItem {
	out := make([]PlayerListItem, len(list))
	for i, e := range list {
		out[i] = PlayerListItem{ID: e.ID, Name: e.Name, Ready: e.Ready, IsHost: e.IsHost}
	}
	return out
}

// BroadcastPlayerList implements room.Broadcaster.
func (h *Hub) BroadcastPlayerList(roomID string, list []room.PlayerListEntry) {
	h.broadcastRoom(roomID, "", "playerList", PlayerListMsg{RoomID: roomID, Players: toPlayerListItems(list)})
}

// NotifyClientJoined implements room.Broadcaster. clientJoined is a
// server->host message only; the rest of the room learns about the new
// peer from the playerList broadcast that follows.
func (h *Hub) NotifyClientJoined(roomID, hostID, peerID, name string) {
	if host, ok := h.peer(hostID); ok {
		h.send(host, "clientJoined", ClientJoinedMsg{PeerID: peerID, Name: name})
	}
	if h.events != nil {
		h.events.Emit(EventPeerJoined, roomID, peerID, map[string]string{"name": name})
	}
}

// NotifyClientLeft implements room.Broadcaster. Host-only, like
// NotifyClientJoined.
func (h *Hub) NotifyClientLeft(roomID, hostID, peerID string) {
	if host, ok := h.peer(hostID); ok {
		h.send(host, "clientLeft", ClientLeftMsg{PeerID: peerID})
	}
	if h.events != nil {
		h.events.Emit(EventPeerLeft, roomID, peerID, nil)
	}
}

// NotifyRoomClosed implements room.Broadcaster.
func (h *Hub) NotifyRoomClosed(roomID string) {
	h.broadcastRoom(roomID, "", "roomClosed", RoomClosedMsg{Reason: "host disconnected"})

	h.mu.Lock()
	for _, p := range h.roomPeers[roomID] {
		p.setRoom("", "")
	}
	delete(h.roomPeers, roomID)
	h.mu.Unlock()

	if h.events != nil {
		h.events.Emit(EventRoomClosed, roomID, "", nil)
	}
}
