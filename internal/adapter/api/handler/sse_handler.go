package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// ContextSource publishes the process-wide resolution context.
type ContextSource interface {
	Current() domain.ResolutionContext
	Watch(fn func(domain.ResolutionContext)) func()
}

// SSEBroker streams resolution context changes to preview clients.
type SSEBroker struct {
	logger  *slog.Logger
	source  ContextSource
	clients map[chan []byte]struct{}
	mu      sync.RWMutex
	stop    func()
}

// NewSSEBroker creates a new SSEBroker subscribed to source. Call Close to
// unsubscribe.
func NewSSEBroker(source ContextSource, logger *slog.Logger) *SSEBroker {
	broker := &SSEBroker{
		logger:  logger,
		source:  source,
		clients: make(map[chan []byte]struct{}),
	}
	broker.stop = source.Watch(broker.publish)
	return broker
}

// ServeHTTP handles new client connections for the SSE stream. The current
// context is sent first, then every change.
func (b *SSEBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Holds only the latest undelivered context.
	messageChan := make(chan []byte, 1)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)

	if msg, err := json.Marshal(b.source.Current()); err == nil {
		fmt.Fprintf(w, "event: context\ndata: %s\n\n", msg)
		flusher.Flush()
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messageChan:
			if !ok {
				return // Channel was closed
			}
			fmt.Fprintf(w, "event: context\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Clients returns the number of connected clients.
func (b *SSEBroker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close unsubscribes from the source and disconnects every client.
func (b *SSEBroker) Close() {
	b.stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		delete(b.clients, client)
		close(client)
	}
}

func (b *SSEBroker) publish(rc domain.ResolutionContext) {
	msg, err := json.Marshal(rc)
	if err != nil {
		b.logger.Error("failed to marshal SSE message", "error", err)
		return
	}
	b.broadcast(msg)
}

func (b *SSEBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected")
}

func (b *SSEBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected")
	}
}

// broadcast replaces any context a slow client has not read yet, so every
// client always ends on the latest one.
func (b *SSEBroker) broadcast(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		select {
		case <-client:
		default:
		}
		client <- msg
	}
}
