package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/mcmol/internal/sim"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, b *Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count %d, want %d", b.ClientCount(), n)
}

func TestBroadcastReachesClient(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitForClients(t, b, 1)

	b.Publish(Event{Sweep: 3, Sweeps: 10, Energy: -42.5, Time: time.Now()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Sweep != 3 || ev.Sweeps != 10 || ev.Energy != -42.5 {
		t.Errorf("received %+v", ev)
	}
}

func TestObserverPublishes(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitForClients(t, b, 1)

	obs := b.Observer()
	obs(sim.Progress{Sweep: 7, Sweeps: 20, Energy: 1.25})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Sweep != 7 || ev.Energy != 1.25 {
		t.Errorf("received %+v", ev)
	}
	if ev.Time.IsZero() {
		t.Error("observer did not stamp the event")
	}
}

func TestDisconnectedClientDropped(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, b, 1)

	conn.Close()
	waitForClients(t, b, 0)
}

func TestPublishWithoutClients(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	// Must not block or panic.
	for i := 0; i < 500; i++ {
		b.Publish(Event{Sweep: i})
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroadcaster()
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	// Publishing after close must not panic.
	b.Publish(Event{Sweep: 1})
}
