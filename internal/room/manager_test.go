package room

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type recordingBroadcaster struct {
	joined    []string
	left      []string
	closed    []string
	playerLen map[string]int
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{playerLen: make(map[string]int)}
}

func (b *recordingBroadcaster) BroadcastPlayerList(roomID string, list []PlayerListEntry) {
	b.playerLen[roomID] = len(list)
}
func (b *recordingBroadcaster) NotifyClientJoined(roomID, hostID, peerID, name string) {
	b.joined = append(b.joined, peerID)
}
func (b *recordingBroadcaster) NotifyClientLeft(roomID, hostID, peerID string) {
	b.left = append(b.left, peerID)
}
func (b *recordingBroadcaster) NotifyRoomClosed(roomID string) {
	b.closed = append(b.closed, roomID)
}

func TestRoomLifecycle(t *testing.T) {
	Convey("Given a fresh room manager", t, func() {
		bcast := newRecordingBroadcaster()
		mgr := NewManager(bcast)

		Convey("CreateRoom rejects a malformed id", func() {
			_, err := mgr.CreateRoom("bad id!", "host1", "Host", DefaultSettings())
			So(err, ShouldEqual, ErrInvalidName)
		})

		Convey("CreateRoom seeds the host as implicitly ready", func() {
			r, err := mgr.CreateRoom("room1", "host1", "Host", DefaultSettings())
			So(err, ShouldBeNil)
			So(r.IsHost("host1"), ShouldBeTrue)

			Convey("a second createRoom with the same id conflicts", func() {
				_, err := mgr.CreateRoom("room1", "host2", "Other", DefaultSettings())
				So(err, ShouldEqual, ErrConflict)
			})
		})

		Convey("Given a room at 2-player capacity", func() {
			settings := DefaultSettings()
			settings.MaxPlayers = 2
			_, err := mgr.CreateRoom("room1", "host1", "Host", settings)
			So(err, ShouldBeNil)

			Convey("JoinRoom admits a peer up to capacity", func() {
				_, err := mgr.JoinRoom("room1", "peer2", "Peer2")
				So(err, ShouldBeNil)
				So(bcast.joined, ShouldContain, "peer2")
				So(bcast.playerLen["room1"], ShouldEqual, 2)
			})

			Convey("JoinRoom is idempotent on rejoin", func() {
				mgr.JoinRoom("room1", "peer2", "Peer2")
				_, err := mgr.JoinRoom("room1", "peer2", "Peer2")
				So(err, ShouldBeNil)
			})

			Convey("JoinRoom rejects a peer once capacity is reached", func() {
				mgr.JoinRoom("room1", "peer2", "Peer2")
				_, err := mgr.JoinRoom("room1", "peer3", "Peer3")
				So(err, ShouldEqual, ErrCapacity)
			})

			Convey("StartGame fails the ready gate until every non-host peer is ready", func() {
				mgr.JoinRoom("room1", "peer2", "Peer2")

				_, err := mgr.StartGame("room1", "host1")
				So(err, ShouldEqual, ErrReadyGate)

				mgr.SetReady("room1", "peer2", true)
				peers, err := mgr.StartGame("room1", "host1")
				So(err, ShouldBeNil)
				So(peers[0], ShouldEqual, "host1")
			})

			Convey("StartGame rejects a non-host requester", func() {
				mgr.JoinRoom("room1", "peer2", "Peer2")
				mgr.SetReady("room1", "peer2", true)
				_, err := mgr.StartGame("room1", "peer2")
				So(err, ShouldEqual, ErrUnauthorized)
			})

			Convey("the host leaving destroys the room rather than transferring it", func() {
				mgr.JoinRoom("room1", "peer2", "Peer2")
				err := mgr.LeaveRoom("room1", "host1")
				So(err, ShouldBeNil)
				So(bcast.closed, ShouldContain, "room1")

				_, exists := mgr.Get("room1")
				So(exists, ShouldBeFalse)
			})

			Convey("a non-host leaving just prunes membership", func() {
				mgr.JoinRoom("room1", "peer2", "Peer2")
				err := mgr.LeaveRoom("room1", "peer2")
				So(err, ShouldBeNil)
				So(bcast.left, ShouldContain, "peer2")

				r, exists := mgr.Get("room1")
				So(exists, ShouldBeTrue)
				So(r.IsHost("host1"), ShouldBeTrue)
			})
		})
	})
}

func TestSettingsClamp(t *testing.T) {
	Convey("Clamp bounds every field to its legal range", t, func() {
		s := Settings{RoundsToWin: 0, KillLimit: 1000, MaxPlayers: 1, MapName: "arena"}.Clamp()
		So(s.RoundsToWin, ShouldEqual, 1)
		So(s.KillLimit, ShouldEqual, 50)
		So(s.MaxPlayers, ShouldEqual, 2)
		So(s.MapName, ShouldEqual, "arena")
	})
}

func TestValidName(t *testing.T) {
	tooLong := ""
	for i := 0; i < 51; i++ {
		tooLong += "a"
	}
	cases := map[string]bool{
		"room1":     true,
		"Room_1-2":  true,
		"":          false,
		"has space": false,
		"has/slash": false,
		tooLong:     false,
	}
	for name, want := range cases {
		if got := ValidName(name); got != want {
			t.Errorf("ValidName(%q) = %v, want %v", name, got, want)
		}
	}
}
