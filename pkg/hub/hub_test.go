package hub

import (
	"testing"
	"time"
)

func register(t *testing.T, h *Hub) *Client {
	t.Helper()
	c := &Client{hub: h, send: make(chan Message, 4)}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("client channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return Message{}
	}
}

func TestHub_BroadcastToAll(t *testing.T) {
	h := New("test", nil)
	go h.Run()
	defer h.Stop()

	a := register(t, h)
	b := register(t, h)

	if err := h.BroadcastJSON(map[string]string{"action": "add_item_to_cart"}); err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != JSONMessage || string(msg.Data) != `{"action":"add_item_to_cart"}` {
			t.Errorf("unexpected message %s", msg.Data)
		}
	}
	if n := h.ClientCount(); n != 2 {
		t.Errorf("expected 2 clients, got %d", n)
	}
}

func TestHub_OnConnectSendsSnapshot(t *testing.T) {
	h := New("test", nil)
	h.OnConnect = func() []Message {
		return []Message{NewJSONMessage([]byte(`{"started":false}`))}
	}
	go h.Run()
	defer h.Stop()

	c := register(t, h)
	if msg := receive(t, c); string(msg.Data) != `{"started":false}` {
		t.Errorf("expected snapshot, got %s", msg.Data)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("test", nil)
	go h.Run()
	defer h.Stop()

	slow := &Client{hub: h, send: make(chan Message)}
	h.register <- slow

	h.Broadcast(NewJSONMessage([]byte(`{}`)))

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if h.ClientCount() != 0 {
		t.Fatal("expected slow client to be dropped")
	}
	if _, ok := <-slow.send; ok {
		t.Error("expected the slow client's channel to be closed")
	}
}

func TestHub_Unregister(t *testing.T) {
	h := New("test", nil)
	go h.Run()
	defer h.Stop()

	c := register(t, h)
	h.unregister <- c

	if _, ok := <-c.send; ok {
		t.Error("expected channel closed after unregister")
	}
	if h.ClientCount() != 0 {
		t.Errorf("expected no clients, got %d", h.ClientCount())
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	h := New("test", nil)
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	c := register(t, h)
	h.Stop()
	h.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if _, ok := <-c.send; ok {
		t.Error("expected client closed on Stop")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("test", nil)

	for i := 0; i < cap(h.broadcast); i++ {
		if !h.Broadcast(NewJSONMessage(nil)) {
			t.Fatalf("broadcast %d dropped early", i)
		}
	}
	if h.Broadcast(NewJSONMessage(nil)) {
		t.Error("expected full queue to drop the message")
	}
}
