package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskcommadmin/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Client is one WebSocket connection viewing the chat of a task.
type Client struct {
	ID     string
	UserID string
	TaskID string
	Conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID, taskID string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		TaskID: taskID,
		Conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Enqueue queues a frame for writing. Frames are dropped when the client is
// closed or its buffer is full.
func (c *Client) Enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	case <-c.done:
		return false
	default:
		logger.Warn("Dropping frame for slow client %s on task %s", c.ID, c.TaskID)
		return false
	}
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}

// ReadPump passes every text frame to handle until the connection fails.
// It unregisters and closes the client on return.
func (c *Client) ReadPump(m *Manager, handle func(message []byte)) {
	defer func() {
		m.Unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for client %s: %v", c.ID, err)
			}
			return
		}
		handle(message)
	}
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("WebSocket write error for client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Manager tracks the open chat connections per task.
type Manager struct {
	mutex   sync.RWMutex
	clients map[string]map[string]*Client
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]map[string]*Client),
	}
}

func (m *Manager) Register(c *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	byID, ok := m.clients[c.TaskID]
	if !ok {
		byID = make(map[string]*Client)
		m.clients[c.TaskID] = byID
	}
	byID[c.ID] = c
	logger.Info("Client %s (user %s) joined chat of task %s", c.ID, c.UserID, c.TaskID)
}

func (m *Manager) Unregister(c *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	byID, ok := m.clients[c.TaskID]
	if !ok {
		return
	}
	if _, ok := byID[c.ID]; !ok {
		return
	}
	delete(byID, c.ID)
	if len(byID) == 0 {
		delete(m.clients, c.TaskID)
	}
	logger.Info("Client %s left chat of task %s", c.ID, c.TaskID)
}

// Count returns the number of connections viewing taskID.
func (m *Manager) Count(taskID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[taskID])
}

// CloseAll closes every connection, for shutdown.
func (m *Manager) CloseAll() {
	m.mutex.RLock()
	var all []*Client
	for _, byID := range m.clients {
		for _, c := range byID {
			all = append(all, c)
		}
	}
	m.mutex.RUnlock()

	for _, c := range all {
		c.Close()
	}
}
