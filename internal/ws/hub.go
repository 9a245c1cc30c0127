package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

// Event types pushed to the dashboard.
const (
	EventStockUpdate          = "stock_update"
	EventTransactionCreated   = "transaction_created"
	EventTransactionCancelled = "transaction_cancelled"
	EventDebtPayment          = "debt_payment"
	EventLowStockAlert        = "low_stock_alert"
)

// Event is the envelope every broadcast message uses.
type Event struct {
	Type      string      `json:"type"`
	Action    string      `json:"action,omitempty"`
	Data      interface{} `json:"data"`
	User      *Actor      `json:"user,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	done       chan struct{}
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			total := len(h.Clients)
			h.mutex.Unlock()
			h.log.WithField("clients", total).Debug("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and drops every connected client.
func (h *Hub) Stop() {
	close(h.done)
}

// ClientCount is the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish queues e for every client. Events from one caller reach clients in
// the order they were published. It blocks only while the buffer is full and
// gives up once the hub stops. Callers publish only after their database
// transaction committed. A nil hub drops the event.
func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.WithError(err).WithField("type", e.Type).Error("ws event marshal failed")
		return
	}
	select {
	case h.Broadcast <- msg:
	case <-h.done:
	}
}

// Serve is the fiber websocket handler: it registers the connection and
// keeps reading until the client goes away.
func (h *Hub) Serve(c *websocket.Conn) {
	h.Register <- c
	defer func() {
		h.Unregister <- c
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
