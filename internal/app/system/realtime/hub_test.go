package realtime

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

// drain reads one payload without blocking, failing the test when none
// is queued.
func drain(t *testing.T, c *Conn) Event {
	t.Helper()
	select {
	case data := <-c.Outbound():
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		return ev
	default:
		t.Fatal("no payload queued")
		return Event{}
	}
}

func empty(c *Conn) bool {
	select {
	case <-c.Outbound():
		return false
	default:
		return true
	}
}

func TestPublishReachesRoomMembers(t *testing.T) {
	h := NewHub(zap.NewNop())
	a := NewConn("user-a")
	b := NewConn("user-b")
	h.Register(a)
	h.Register(b)
	h.Join(a, ProjectRoom("p1"))
	h.Join(b, ProjectRoom("p1"))

	h.Publish(ProjectRoom("p1"), Event{Type: EventTaskCreated})

	if ev := drain(t, a); ev.Type != EventTaskCreated {
		t.Errorf("a got %q", ev.Type)
	}
	if ev := drain(t, b); ev.Type != EventTaskCreated {
		t.Errorf("b got %q", ev.Type)
	}
}

func TestPublishSkipsNonMembers(t *testing.T) {
	h := NewHub(zap.NewNop())
	in := NewConn("member")
	out := NewConn("outsider")
	h.Register(in)
	h.Register(out)
	h.Join(in, ProjectRoom("p1"))

	h.Publish(ProjectRoom("p1"), Event{Type: EventProjectUpdated})

	if empty(in) {
		t.Error("room member received nothing")
	}
	if !empty(out) {
		t.Error("non-member received a room broadcast")
	}
}

func TestPublishExceptSuppressesActorEcho(t *testing.T) {
	h := NewHub(zap.NewNop())
	actor := NewConn("actor")
	peer := NewConn("peer")
	h.Register(actor)
	h.Register(peer)
	h.Join(actor, ProjectRoom("p1"))
	h.Join(peer, ProjectRoom("p1"))

	h.PublishExcept(ProjectRoom("p1"), Event{Type: EventTaskUpdated}, "actor")

	if !empty(actor) {
		t.Error("actor received their own echo")
	}
	if empty(peer) {
		t.Error("peer missed the broadcast")
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewConn("u")
	h.Register(c)
	h.Join(c, TaskRoom("t1"))
	h.Leave(c, TaskRoom("t1"))

	h.Publish(TaskRoom("t1"), Event{Type: EventCommentAdded})
	if !empty(c) {
		t.Error("received event after leaving the room")
	}
	if h.RoomSize(TaskRoom("t1")) != 0 {
		t.Error("room not emptied on leave")
	}
}

func TestRegisterJoinsPersonalRoom(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewConn("u1")
	h.Register(c)

	h.NotifyUser("u1", Event{Type: EventUserMentioned})
	if ev := drain(t, c); ev.Type != EventUserMentioned {
		t.Errorf("got %q", ev.Type)
	}
}

func TestUnregisterClosesAndCleansRooms(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewConn("u1")
	h.Register(c)
	h.Join(c, ProjectRoom("p1"))
	h.Unregister(c)

	select {
	case <-c.Done():
	default:
		t.Error("Done not closed on unregister")
	}
	if h.RoomSize(ProjectRoom("p1")) != 0 {
		t.Error("room retains unregistered conn")
	}

	// Broadcasts after unregister must not panic or deliver.
	h.Publish(ProjectRoom("p1"), Event{Type: EventTaskDeleted})
	h.NotifyUser("u1", Event{Type: EventUserMentioned})
}

func TestSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewConn("u1")
	h.Register(c)
	h.Join(c, ProjectRoom("p1"))

	// Overfill the send buffer; the surplus must be dropped silently.
	for i := 0; i < sendBuffer+5; i++ {
		h.Publish(ProjectRoom("p1"), Event{Type: EventTaskUpdated})
	}

	queued := 0
	for !empty(c) {
		queued++
	}
	if queued != sendBuffer {
		t.Errorf("queued %d events, want %d", queued, sendBuffer)
	}
}

func TestAnonymousConnHasNoPersonalRoom(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewConn("")
	h.Register(c)

	h.NotifyUser("", Event{Type: EventPong})
	if !empty(c) {
		t.Error("anonymous conn received personal-room traffic")
	}
}
