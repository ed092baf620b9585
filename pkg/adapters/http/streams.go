package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/welllit/pkg/domain"
)

// StreamManager fans session lifecycle events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel; the returned func unregisters and closes it.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends msg to every subscriber, dropping it for slow ones.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping event")
		}
	}
}

func (sm *StreamManager) publish(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("SSE: failed to encode event", "err", err)
		return
	}
	sm.Broadcast(string(data))
}

// Hooks returns session hooks that publish every lifecycle event as JSON.
func (sm *StreamManager) Hooks() domain.Hooks {
	return domain.Hooks{
		OnProtocolLoaded:   func(_ context.Context, e *domain.ProtocolEvent) { sm.publish(e) },
		OnTransferUpdated:  func(_ context.Context, e *domain.TransferEvent) { sm.publish(e) },
		OnTransferReset:    func(_ context.Context, e *domain.TransferEvent) { sm.publish(e) },
		OnPlateAdvanced:    func(_ context.Context, e *domain.PlateEvent) { sm.publish(e) },
		OnProtocolComplete: func(_ context.Context, e *domain.ProtocolEvent) { sm.publish(e) },
		OnProtocolAborted:  func(_ context.Context, e *domain.ProtocolEvent) { sm.publish(e) },
		OnRejected:         func(_ context.Context, e *domain.RejectEvent) { sm.publish(e) },
	}
}
