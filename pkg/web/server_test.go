package web

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/teslashibe/go-kiosk/pkg/cart"
	"github.com/teslashibe/go-kiosk/pkg/menu"
)

func get(t *testing.T, s *Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, body
}

func sampleFrame() Frame {
	lines := []cart.Line{{Name: "Zinger Burger", UnitPrice: 349, Quantity: 3, Image: "images/zinger_burger.jpg"}}
	return Frame{
		SessionID:  "s-1",
		Started:    true,
		Action:     "add_item_to_cart",
		Cart:       CartLines(lines),
		TotalPrice: cart.TotalOf(lines).String(),
		Messages:   []Turn{{Role: "user", Content: "three zinger burgers"}},
	}
}

func TestServer_FrameEndpoint(t *testing.T) {
	s := NewServer(menu.Default(), Config{})

	resp, body := get(t, s, "/api/frame")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var initial Frame
	if err := json.Unmarshal(body, &initial); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if initial.Started || len(initial.Cart) != 0 || initial.TotalPrice != "$0.00" {
		t.Errorf("unexpected initial frame %+v", initial)
	}

	s.Publish(sampleFrame())

	_, body = get(t, s, "/api/frame")
	var got Frame
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Started || got.Action != "add_item_to_cart" {
		t.Errorf("unexpected frame %+v", got)
	}
	if len(got.Cart) != 1 || got.Cart[0].LineTotal != "$10.47" {
		t.Errorf("unexpected cart %+v", got.Cart)
	}
	if got.TotalPrice != "$10.47" {
		t.Errorf("expected $10.47, got %s", got.TotalPrice)
	}
	if len(got.Menu) != 3 {
		t.Errorf("expected menu filled in, got %d sections", len(got.Menu))
	}
}

func TestServer_MenuEndpoint(t *testing.T) {
	s := NewServer(menu.Default(), Config{})

	_, body := get(t, s, "/api/menu")
	var sections []MenuSection
	if err := json.Unmarshal(body, &sections); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sections) != 3 || sections[0].Title != "Main Dishes" {
		t.Fatalf("unexpected sections %+v", sections)
	}
	if sections[2].Items[0].Name != "Pepsi" || sections[2].Items[0].Price != "$1.41" {
		t.Errorf("unexpected beverage %+v", sections[2].Items[0])
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "kiosk_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	s := NewServer(menu.Default(), Config{Gatherer: reg})
	resp, body := get(t, s, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "kiosk_test_total 1") {
		t.Errorf("metric missing from output:\n%s", body)
	}

	plain := NewServer(menu.Default(), Config{})
	if resp, _ := get(t, plain, "/metrics"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without a gatherer, got %d", resp.StatusCode)
	}
}

func TestServer_WebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer(menu.Default(), Config{})
	if resp, _ := get(t, s, "/ws/frames"); resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}

func TestServer_StreamsFrames(t *testing.T) {
	s := NewServer(menu.Default(), Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.Serve(ln)
	defer s.Shutdown()

	url := "ws://" + ln.Addr().String() + "/ws/frames"
	var conn *websocket.Conn
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot Frame
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.Started {
		t.Error("expected the idle snapshot first")
	}

	for s.Displays() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Publish(sampleFrame())

	var pushed Frame
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if pushed.SessionID != "s-1" || pushed.Action != "add_item_to_cart" {
		t.Errorf("unexpected pushed frame %+v", pushed)
	}
}
