package service

import (
	"sync"

	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/infrastructure/metrics"
)

// ProgressEvent is the ephemeral per-video notification broadcast to
// subscribers. It is never persisted or replayed.
type ProgressEvent struct {
	VideoID     string             `json:"videoId"`
	Progress    int                `json:"progress"`
	Done        bool               `json:"done,omitempty"`
	Sensitivity domain.Sensitivity `json:"sensitivityStatus,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// EventBus fans progress events out to the live subscribers of one video's
// channel. Delivery is at-most-once: publish never blocks, and events with
// no subscribers are dropped.
type EventBus struct {
	subscribers map[string][]chan ProgressEvent
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan ProgressEvent),
	}
}

func (eb *EventBus) Subscribe(videoID string) chan ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, 16)
	eb.subscribers[videoID] = append(eb.subscribers[videoID], ch)
	metrics.SubscribersActive.Inc()
	return ch
}

func (eb *EventBus) Unsubscribe(videoID string, ch chan ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[videoID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[videoID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			metrics.SubscribersActive.Dec()
			break
		}
	}

	if len(eb.subscribers[videoID]) == 0 {
		delete(eb.subscribers, videoID)
	}
}

func (eb *EventBus) Publish(videoID string, event ProgressEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	metrics.ProgressEventsTotal.Inc()
	for _, ch := range eb.subscribers[videoID] {
		select {
		case ch <- event:
		default:
			// Drop event if subscriber is slow
		}
	}
}
