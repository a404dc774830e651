package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/service"
)

const progressEventName = "processingProgress"

type SSEHandler struct {
	eventBus *service.EventBus
	videoSvc VideoService
}

func NewSSEHandler(eventBus *service.EventBus, videoSvc VideoService) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		videoSvc: videoSvc,
	}
}

func sseWrite(w http.ResponseWriter, eventName string, data []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, event service.ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	sseWrite(w, progressEventName, data)
}

// snapshotEvent builds a progress event from the persisted record so a
// client connecting mid-pipeline sees the current state immediately. Missed
// events are never replayed.
func snapshotEvent(v *domain.Video) service.ProgressEvent {
	event := service.ProgressEvent{
		VideoID:  v.ID,
		Progress: v.Progress,
	}
	switch v.Status {
	case domain.VideoStatusCompleted:
		event.Done = true
		event.Sensitivity = v.Sensitivity
	case domain.VideoStatusFailed:
		event.Error = "Processing failed"
	}
	return event
}

func (h *SSEHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		id := r.PathValue("id")

		video, err := h.videoSvc.Get(r.Context(), user.TenantID, id)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		// Already terminal: send the final state and hold the connection
		// open until the client closes it.
		if video.IsTerminal() {
			h.sendEvent(w, snapshotEvent(video))
			<-r.Context().Done()
			return
		}

		// Subscribe before sending the snapshot so no live event can slip
		// between the two.
		ch := h.eventBus.Subscribe(id)
		defer h.eventBus.Unsubscribe(id, ch)

		h.sendEvent(w, snapshotEvent(video))

		ctx := r.Context()
		keepAlive := time.NewTicker(15 * time.Second)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case event, ok := <-ch:
				if !ok {
					return
				}
				h.sendEvent(w, event)

				if event.Done || event.Error != "" {
					<-ctx.Done()
					return
				}
			}
		}
	}
}
