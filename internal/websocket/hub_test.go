package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/notiprefs/internal/prefs"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   nil,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
	return Message{}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Errorf("unexpected message for user %d: %s", c.userID, data)
	default:
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(NewMessage("notification_type", "created", 42))

	for _, c := range []*Client{c1, c2} {
		got := receive(t, c)
		if got.Type != "notification_type_created" {
			t.Errorf("expected type notification_type_created, got %s", got.Type)
		}
		if got.ID != 42 {
			t.Errorf("expected id 42, got %d", got.ID)
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestSendToUser(t *testing.T) {
	hub := NewHub(slog.Default())

	alicePhone := mockClient(hub, 1)
	aliceLaptop := mockClient(hub, 1)
	bob := mockClient(hub, 2)
	for _, c := range []*Client{alicePhone, aliceLaptop, bob} {
		hub.Register(c)
	}

	hub.SendToUser(1, NewMessage("notification_preference", "updated", 7))

	for _, c := range []*Client{alicePhone, aliceLaptop} {
		if got := receive(t, c); got.Type != "notification_preference_updated" {
			t.Errorf("expected type notification_preference_updated, got %s", got.Type)
		}
	}
	assertEmpty(t, bob)
}

func TestPublishRouting(t *testing.T) {
	hub := NewHub(slog.Default())

	alice := mockClient(hub, 1)
	bob := mockClient(hub, 2)
	hub.Register(alice)
	hub.Register(bob)

	hub.Publish(prefs.Event{Entity: prefs.EntityType, Action: prefs.ActionDeleted, ID: 3})
	receive(t, alice)
	receive(t, bob)

	hub.Publish(prefs.Event{Entity: prefs.EntityPreference, Action: prefs.ActionUpdated, ID: 9, UserID: 2})
	assertEmpty(t, alice)
	got := receive(t, bob)
	if got.Entity != prefs.EntityPreference || got.ID != 9 {
		t.Errorf("unexpected message %+v", got)
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast(NewMessage("notification_type", "deleted", 1))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("test", "fill", int64(i)))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(NewMessage("test", "dropped", 999))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("notification_type", "updated", 5)
	if msg.Type != "notification_type_updated" {
		t.Errorf("expected type notification_type_updated, got %s", msg.Type)
	}
	if msg.Entity != "notification_type" {
		t.Errorf("expected entity notification_type, got %s", msg.Entity)
	}
	if msg.Action != "updated" {
		t.Errorf("expected action updated, got %s", msg.Action)
	}
	if msg.ID != 5 {
		t.Errorf("expected id 5, got %d", msg.ID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Spawn goroutines that register, publish, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c := mockClient(hub, userID)
			hub.Register(c)
			hub.Broadcast(NewMessage("test", "concurrent", 0))
			hub.SendToUser(userID, NewMessage("test", "private", 0))
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i % 3))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
