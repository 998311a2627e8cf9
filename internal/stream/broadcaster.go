package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/mcmol/internal/sim"
)

const writeWait = 10 * time.Second

// Event is one progress sample pushed to connected clients.
type Event struct {
	Sweep  int       `json:"sweep"`
	Sweeps int       `json:"sweeps"`
	Energy float64   `json:"energy"`
	Time   time.Time `json:"time"`
}

// Broadcaster fans simulation progress out to WebSocket clients. A
// slow or dead client is dropped rather than allowed to stall the
// simulation loop.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Handler upgrades incoming HTTP requests and registers the client.
func (b *Broadcaster) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		select {
		case b.register <- conn:
		case <-b.done:
			conn.Close()
			return
		}
		go b.readLoop(conn)
	})
}

// readLoop drains client frames so close handshakes are processed.
func (b *Broadcaster) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case b.unregister <- conn:
	case <-b.done:
	}
}

// Publish queues an event for delivery. Events are dropped when the
// queue is full so publishing never blocks the caller.
func (b *Broadcaster) Publish(ev Event) {
	select {
	case b.broadcast <- ev:
	case <-b.done:
	default:
	}
}

// Observer adapts the broadcaster to the sampler's observer hook.
func (b *Broadcaster) Observer() sim.Observer {
	return func(p sim.Progress) {
		b.Publish(Event{
			Sweep:  p.Sweep,
			Sweeps: p.Sweeps,
			Energy: p.Energy,
			Time:   time.Now(),
		})
	}
}

// ClientCount reports the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) run() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return

		case conn := <-b.register:
			b.mu.Lock()
			b.clients[conn] = true
			b.mu.Unlock()

		case conn := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[conn]; ok {
				delete(b.clients, conn)
				conn.Close()
			}
			b.mu.Unlock()

		case ev := <-b.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}

			b.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(b.clients))
			for conn := range b.clients {
				conns = append(conns, conn)
			}
			b.mu.RUnlock()

			var failed []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					failed = append(failed, conn)
				}
			}
			if len(failed) > 0 {
				b.mu.Lock()
				for _, conn := range failed {
					if _, ok := b.clients[conn]; ok {
						delete(b.clients, conn)
						conn.Close()
					}
				}
				b.mu.Unlock()
			}
		}
	}
}

// Close drops all clients and stops the broadcast loop. Safe to call
// more than once.
func (b *Broadcaster) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.mu.Lock()
		for conn := range b.clients {
			conn.Close()
			delete(b.clients, conn)
		}
		b.mu.Unlock()
		b.wg.Wait()
	})
	return nil
}
