package relay

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lanarena/relay/internal/room"
)

func newTestHub() *Hub {
	rooms := room.NewManager(nil)
	hub := NewHub(rooms, nil)
	rooms.Broadcaster = hub
	return hub
}

func newTestPeer(id string) *Peer {
	return &Peer{ID: id, IP: "127.0.0.1", send: make(chan []byte, sendBuffer)}
}

// joinRoom registers host (and others) with the hub as ServeWS does, then
// seats them in roomID the same way the dispatch handlers do, so tests can
// focus on the message under test.
func joinRoom(h *Hub, roomID string, host *Peer, others ...*Peer) {
	h.mu.Lock()
	h.peers[host.ID] = host
	for _, p := range others {
		h.peers[p.ID] = p
	}
	h.mu.Unlock()

	_, err := h.rooms.CreateRoom(roomID, host.ID, "host", room.DefaultSettings())
	So(err, ShouldBeNil)
	host.setRoom(roomID, "host")
	h.addToRoom(roomID, host)

	for _, p := range others {
		_, err := h.rooms.JoinRoom(roomID, p.ID, p.ID)
		So(err, ShouldBeNil)
		p.setRoom(roomID, p.ID)
		h.addToRoom(roomID, p)
	}
}

// drain returns the next envelope queued for p, or ok=false if none.
func drain(p *Peer) (Envelope, bool) {
	select {
	case raw := <-p.send:
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return Envelope{}, false
		}
		return env, true
	default:
		return Envelope{}, false
	}
}

func drainAll(peers ...*Peer) {
	for _, p := range peers {
		for {
			if _, ok := drain(p); !ok {
				break
			}
		}
	}
}

// drainForType scans p's queue for the first envelope of msgType.
func drainForType(p *Peer, msgType string) (Envelope, bool) {
	for {
		env, ok := drain(p)
		if !ok {
			return Envelope{}, false
		}
		if env.Type == msgType {
			return env, true
		}
	}
}

func TestDispatchHeroSelect(t *testing.T) {
	Convey("Given a room with a host and two clients", t, func() {
		h := newTestHub()
		host, p2, p3 := newTestPeer("host"), newTestPeer("p2"), newTestPeer("p3")
		joinRoom(h, "room1", host, p2, p3)
		drainAll(host, p2, p3) // discard join/ack noise

		Convey("a heroSelect from the host broadcasts unwrapped to the others", func() {
			payload := json.RawMessage(`{"host":"marksman","p2":"brawler"}`)
			h.dispatch(host, Envelope{Type: "heroSelect", Data: payload})

			for _, p := range []*Peer{p2, p3} {
				env, ok := drain(p)
				So(ok, ShouldBeTrue)
				So(env.Type, ShouldEqual, "heroSelect")
				So(string(env.Data), ShouldEqual, string(payload))
			}

			_, hostGotEcho := drain(host)
			So(hostGotEcho, ShouldBeFalse)
		})

		Convey("a heroSelect from a non-host forwards wrapped to the host only", func() {
			payload := json.RawMessage(`{"heroId":"brawler"}`)
			h.dispatch(p2, Envelope{Type: "heroSelect", Data: payload})

			env, ok := drain(host)
			So(ok, ShouldBeTrue)
			So(env.Type, ShouldEqual, "heroSelect")

			var wrapped inputEnvelope
			So(json.Unmarshal(env.Data, &wrapped), ShouldBeNil)
			So(wrapped.PeerID, ShouldEqual, "p2")
			So(string(wrapped.Input), ShouldEqual, string(payload))

			_, p3Saw := drain(p3)
			So(p3Saw, ShouldBeFalse)
		})
	})
}

func TestDispatchInput(t *testing.T) {
	Convey("Given a room with a host and one client", t, func() {
		h := newTestHub()
		host, p2 := newTestPeer("host"), newTestPeer("p2")
		joinRoom(h, "room1", host, p2)
		drainAll(host, p2)

		Convey("a client's input forwards to the host wrapped with the sender id", func() {
			h.dispatch(p2, Envelope{Type: "input", Data: json.RawMessage(`{"seq":1,"moveZ":1}`)})

			env, ok := drain(host)
			So(ok, ShouldBeTrue)
			So(env.Type, ShouldEqual, "input")

			var wrapped inputEnvelope
			So(json.Unmarshal(env.Data, &wrapped), ShouldBeNil)
			So(wrapped.PeerID, ShouldEqual, "p2")
		})

		Convey("the host's own input is never self-forwarded", func() {
			h.dispatch(host, Envelope{Type: "input", Data: json.RawMessage(`{}`)})

			_, hostGot := drain(host)
			So(hostGot, ShouldBeFalse)
			_, p2Got := drain(p2)
			So(p2Got, ShouldBeFalse)
		})
	})
}

func TestDispatchHostBroadcasts(t *testing.T) {
	Convey("Given a room with a host and two clients", t, func() {
		h := newTestHub()
		host, p2, p3 := newTestPeer("host"), newTestPeer("p2"), newTestPeer("p3")
		joinRoom(h, "room1", host, p2, p3)
		drainAll(host, p2, p3)

		Convey("a host snapshot is relayed verbatim to every other peer", func() {
			payload := json.RawMessage(`{"t":5}`)
			h.dispatch(host, Envelope{Type: "snapshot", Data: payload})

			for _, p := range []*Peer{p2, p3} {
				env, ok := drain(p)
				So(ok, ShouldBeTrue)
				So(env.Type, ShouldEqual, "snapshot")
				So(string(env.Data), ShouldEqual, string(payload))
			}
		})

		Convey("a snapshot from a non-host is dropped", func() {
			h.dispatch(p2, Envelope{Type: "snapshot", Data: json.RawMessage(`{}`)})

			_, p3Got := drain(p3)
			So(p3Got, ShouldBeFalse)
		})

		Convey("an unknown message type is ignored, not an error", func() {
			h.dispatch(host, Envelope{Type: "somethingNobodyRecognizes", Data: json.RawMessage(`{}`)})

			_, hostGot := drain(host)
			So(hostGot, ShouldBeFalse)
		})
	})
}

func TestDispatchRoomAcks(t *testing.T) {
	Convey("Given a fresh hub", t, func() {
		h := newTestHub()

		Convey("createRoom acks with the host role, player number 1, and clamped settings", func() {
			p := newTestPeer("p1")
			h.dispatch(p, Envelope{Type: "createRoom", Data: json.RawMessage(
				`{"roomId":"room1","name":"Alice","settings":{"roundsToWin":3,"killLimit":20,"maxPlayers":4}}`)})

			env, ok := drain(p)
			So(ok, ShouldBeTrue)
			So(env.Type, ShouldEqual, "ack")

			var ack AckMsg
			So(json.Unmarshal(env.Data, &ack), ShouldBeNil)
			So(ack.OK, ShouldBeTrue)
			So(ack.Role, ShouldEqual, "host")
			So(ack.PlayerNumber, ShouldEqual, 1)
			So(ack.Settings, ShouldNotBeNil)
			So(ack.Settings.MaxPlayers, ShouldEqual, 4)
		})

		Convey("and an existing room", func() {
			host := newTestPeer("host")
			joinRoom(h, "room1", host)
			drainAll(host)

			Convey("joinRoom acks with the client role, player number, and host id", func() {
				p2 := newTestPeer("p2")
				h.dispatch(p2, Envelope{Type: "joinRoom", Data: json.RawMessage(`{"roomId":"room1","name":"Bob"}`)})

				env, ok := drainForType(p2, "ack")
				So(ok, ShouldBeTrue)

				var ack AckMsg
				So(json.Unmarshal(env.Data, &ack), ShouldBeNil)
				So(ack.OK, ShouldBeTrue)
				So(ack.Role, ShouldEqual, "client")
				So(ack.PlayerNumber, ShouldEqual, 2)
				So(ack.HostID, ShouldEqual, "host")
			})
		})

		Convey("joinRoom on a missing room acks with the canonical error string", func() {
			p := newTestPeer("p1")
			h.dispatch(p, Envelope{Type: "joinRoom", Data: json.RawMessage(`{"roomId":"nope","name":"Bob"}`)})

			env, ok := drain(p)
			So(ok, ShouldBeTrue)
			So(env.Type, ShouldEqual, "ack")

			var ack AckMsg
			So(json.Unmarshal(env.Data, &ack), ShouldBeNil)
			So(ack.OK, ShouldBeFalse)
			So(ack.Error, ShouldEqual, "Room not found")
		})
	})
}

func TestDispatchSettings(t *testing.T) {
	Convey("Given a room with a host and one client", t, func() {
		h := newTestHub()
		host, p2 := newTestPeer("host"), newTestPeer("p2")
		joinRoom(h, "room1", host, p2)
		drainAll(host, p2)

		Convey("a settings update from the host is applied server-side and relayed", func() {
			h.dispatch(host, Envelope{Type: "settings", Data: json.RawMessage(
				`{"roundsToWin":5,"killLimit":30,"maxPlayers":6}`)})

			env, ok := drain(p2)
			So(ok, ShouldBeTrue)
			So(env.Type, ShouldEqual, "settings")

			r, found := h.rooms.Get("room1")
			So(found, ShouldBeTrue)
			s := r.SettingsSnapshot()
			So(s.RoundsToWin, ShouldEqual, 5)
			So(s.MaxPlayers, ShouldEqual, 6)
		})

		Convey("a settings update from a non-host is neither applied nor relayed", func() {
			h.dispatch(p2, Envelope{Type: "settings", Data: json.RawMessage(`{"roundsToWin":9}`)})

			_, hostGot := drain(host)
			So(hostGot, ShouldBeFalse)

			r, found := h.rooms.Get("room1")
			So(found, ShouldBeTrue)
			So(r.SettingsSnapshot().RoundsToWin, ShouldNotEqual, 9)
		})
	})
}
