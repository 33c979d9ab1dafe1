// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "tuner/internal/log"
)

// defaultMinSendInterval rate-limits broadcasts to roughly the refresh
// rate a display consumer can use; reports above that rate are dropped in
// favor of newer ones.
const defaultMinSendInterval = 33 * time.Millisecond

// WebSocketTransport broadcasts each pitch report as JSON to all connected
// clients, with rate limiting so a fast analysis cadence cannot flood the
// network or the clients.
//
// Thread Safety:
// - Mutex-protected client map
// - Safe for concurrent Send/Close
type WebSocketTransport struct {
	clients         map[*websocket.Conn]bool
	clientsMutex    sync.Mutex
	upgrader        websocket.Upgrader
	server          *http.Server
	lastSend        time.Time
	minSendInterval time.Duration
}

// Compile-time check.
var _ Transport = (*WebSocketTransport)(nil)

// NewWebSocketTransport starts an HTTP server on the given port serving
// WebSocket connections on /pitch. The server runs in its own goroutine.
func NewWebSocketTransport(port string) *WebSocketTransport {
	t := &WebSocketTransport{
		clients:         make(map[*websocket.Conn]bool),
		minSendInterval: defaultMinSendInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local tooling; no origin restrictions
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/pitch", t.handleWebSocket)
	t.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		applog.Infof("Transport: pitch WebSocket server listening on port %s", port)
		if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
			applog.Errorf("Transport: WebSocket server error: %v", err)
		}
	}()

	return t
}

// handleWebSocket upgrades the connection, registers the client, and
// removes it again when the connection drops.
func (t *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("Transport: WebSocket upgrade error: %v", err)
		return
	}

	t.clientsMutex.Lock()
	t.clients[conn] = true
	t.clientsMutex.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.clientsMutex.Lock()
				delete(t.clients, conn)
				t.clientsMutex.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// Send broadcasts one report to all connected clients. Reports arriving
// faster than the rate limit are skipped; the next send carries the newer
// value, preserving latest-wins semantics.
func (t *WebSocketTransport) Send(data any) error {
	now := time.Now()

	t.clientsMutex.Lock()
	defer t.clientsMutex.Unlock()

	if now.Sub(t.lastSend) < t.minSendInterval {
		return nil
	}
	t.lastSend = now

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	for client := range t.clients {
		if err := client.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			client.Close()
			delete(t.clients, client)
		}
	}

	return nil
}

// Close disconnects all clients and shuts down the HTTP server.
func (t *WebSocketTransport) Close() error {
	t.clientsMutex.Lock()
	for client := range t.clients {
		client.Close()
		delete(t.clients, client)
	}
	t.clientsMutex.Unlock()

	return t.server.Close()
}
