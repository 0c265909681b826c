package room

import (
	"sync"
)

// Broadcaster is implemented by the relay layer (consumer-defined
// interface, kept here rather than imported, so room never depends on
// relay/transport types). Every method is invoked while the room's own
// mutex is held, so a room's broadcasts leave in the same order as the
// mutations that produced them; implementations must not call back into
// room methods that re-take that lock. The hostID parameter exists for
// the same reason: clientJoined/clientLeft go to the host peer only, and
// the implementation can't look the host up without re-locking the room.
type Broadcaster interface {
	BroadcastPlayerList(roomID string, list []PlayerListEntry)
	NotifyClientJoined(roomID, hostID, peerID, name string)
	NotifyClientLeft(roomID, hostID, peerID string)
	NotifyRoomClosed(roomID string)
}

// Manager owns every active room, keyed by room id. Each room's own mutex
// guards its fields; Manager's mutex only guards the room-id map itself,
// so operations on different rooms never block each other.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room

	Broadcaster Broadcaster
}

// NewManager returns an empty room manager.
func NewManager(b Broadcaster) *Manager {
	return &Manager{rooms: make(map[string]*Room), Broadcaster: b}
}

// Count returns the number of active rooms, for the observability gauge.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// Get looks up a room by id without mutating anything.
func (m *Manager) Get(roomID string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

// CreateRoom creates a new room with hostPeer as its host. Fails with
// ErrInvalidName on a malformed id and ErrConflict if the id is already
// taken.
func (m *Manager) CreateRoom(roomID, hostPeer, hostName string, settings Settings) (*Room, error) {
	if !ValidName(roomID) {
		return nil, ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[roomID]; exists {
		return nil, ErrConflict
	}

	r := newRoom(roomID, hostPeer, hostName, settings)
	m.rooms[roomID] = r
	return r, nil
}

// JoinRoom adds peerID to an existing, non-full room. Notifies the host
// and broadcasts the updated player list on success, under the room's
// mutex so concurrent joins can't reorder their broadcasts relative to
// their mutations.
func (m *Manager) JoinRoom(roomID, peerID, name string) (*Room, error) {
	m.mu.Lock()
	r, exists := m.rooms[roomID]
	m.mu.Unlock()
	if !exists {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.Peers {
		if id == peerID {
			return r, nil // already a member; idempotent rejoin
		}
	}
	if len(r.Peers) >= r.Settings.MaxPlayers {
		return nil, ErrCapacity
	}
	r.Peers = append(r.Peers, peerID)
	r.Names[peerID] = name
	r.Ready[peerID] = false

	if m.Broadcaster != nil {
		m.Broadcaster.NotifyClientJoined(roomID, r.HostPeer, peerID, name)
		m.Broadcaster.BroadcastPlayerList(roomID, r.playerListLocked())
	}
	return r, nil
}

// LeaveRoom removes peerID from a room. If the host leaves, the whole
// room is torn down rather than reassigned to another peer.
func (m *Manager) LeaveRoom(roomID, peerID string) error {
	m.mu.Lock()
	r, exists := m.rooms[roomID]
	if !exists {
		m.mu.Unlock()
		return ErrNotFound
	}

	r.mu.Lock()
	wasHost := peerID == r.HostPeer
	if wasHost {
		delete(m.rooms, roomID)
	} else {
		for i, id := range r.Peers {
			if id == peerID {
				r.Peers = append(r.Peers[:i], r.Peers[i+1:]...)
				break
			}
		}
		delete(r.Names, peerID)
		delete(r.Ready, peerID)
	}

	if m.Broadcaster != nil {
		if wasHost {
			m.Broadcaster.NotifyRoomClosed(roomID)
		} else {
			m.Broadcaster.NotifyClientLeft(roomID, r.HostPeer, peerID)
			m.Broadcaster.BroadcastPlayerList(roomID, r.playerListLocked())
		}
	}
	r.mu.Unlock()
	m.mu.Unlock()
	return nil
}

// SetReady updates a non-host peer's ready flag. The host's readiness
// is always true and cannot be changed through this path.
func (m *Manager) SetReady(roomID, peerID string, ready bool) error {
	r, exists := m.Get(roomID)
	if !exists {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if peerID == r.HostPeer {
		return nil
	}
	if _, member := r.Names[peerID]; !member {
		return ErrUnauthorized
	}
	r.Ready[peerID] = ready

	if m.Broadcaster != nil {
		m.Broadcaster.BroadcastPlayerList(roomID, r.playerListLocked())
	}
	return nil
}

// StartGame validates that requester is the host and every non-host peer
// is ready. Returns the room's peer list (host first) for the caller to
// hand to simhost.
func (m *Manager) StartGame(roomID, requesterID string) ([]string, error) {
	r, exists := m.Get(roomID)
	if !exists {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.HostPeer {
		return nil, ErrUnauthorized
	}
	if !r.allNonHostReadyLocked() {
		return nil, ErrReadyGate
	}

	peers := make([]string, len(r.Peers))
	copy(peers, r.Peers)
	return peers, nil
}

// UpdateSettings lets the host change room settings before the game
// starts (clamped per Settings.Clamp).
func (m *Manager) UpdateSettings(roomID, requesterID string, settings Settings) error {
	r, exists := m.Get(roomID)
	if !exists {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if requesterID != r.HostPeer {
		return ErrUnauthorized
	}
	r.Settings = settings.Clamp()
	return nil
}
