package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const feedWriteTimeout = 5 * time.Second

// FeedMessage is what a live feed client receives for each submission.
type FeedMessage struct {
	Type       string          `json:"type"` // "backlog", "submission"
	Submission json.RawMessage `json:"submission"`
}

// Feed pushes submissions to connected WebSocket clients.
type Feed struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	store    *SubmissionStore
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewFeed creates a feed that replays store contents to new clients.
func NewFeed(store *SubmissionStore, logger *zap.Logger) *Feed {
	return &Feed{
		clients: make(map[*websocket.Conn]struct{}),
		store:   store,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for LAN usage
			},
		},
	}
}

// ServeHTTP upgrades the request, sends the backlog and keeps the client
// registered until it disconnects.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	// Replay and registration happen under the lock Submit holds, so every
	// submission reaches the client exactly once.
	f.mu.Lock()
	backlog, err := f.store.All()
	if err != nil {
		f.logger.Error("feed backlog", zap.Error(err))
	}
	for _, sub := range backlog {
		conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteJSON(FeedMessage{Type: "backlog", Submission: sub}); err != nil {
			f.mu.Unlock()
			conn.Close()
			return
		}
	}
	f.clients[conn] = struct{}{}
	f.mu.Unlock()
	f.logger.Info("feed client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		f.remove(conn)
		f.logger.Info("feed client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Debug("feed read error", zap.Error(err))
			}
			return
		}
	}
}

// Submit appends record to the store and sends it to every connected
// client. Clients that cannot be written to are dropped.
func (f *Feed) Submit(record json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.store.Append(record); err != nil {
		return err
	}

	msg := FeedMessage{Type: "submission", Submission: record}
	for conn := range f.clients {
		conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			f.logger.Debug("dropping feed client", zap.Error(err))
			delete(f.clients, conn)
			conn.Close()
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		conn.Close()
		delete(f.clients, conn)
	}
}

func (f *Feed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.clients, conn)
	f.mu.Unlock()
	conn.Close()
}
