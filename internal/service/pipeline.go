package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/infrastructure/metrics"
	"github.com/pulsevideo/pulse/internal/port"
)

// EventPublisher is the pipeline's view of the event bus.
type EventPublisher interface {
	Publish(videoID string, event ProgressEvent)
}

// localFileStore is implemented by blob stores whose objects live on the
// local disk, letting the prober read them in place.
type localFileStore interface {
	LocalPath(name string) (string, error)
}

// Pipeline drives one uploaded video from Processing to a terminal status.
// Each run is a detached goroutine that is never awaited by the request
// that scheduled it; failures are persisted, emitted and swallowed here.
type Pipeline struct {
	store        port.VideoStore
	prober       port.Prober
	bus          EventPublisher
	blobs        port.BlobStore
	stepInterval time.Duration
}

func NewPipeline(store port.VideoStore, prober port.Prober, bus EventPublisher, blobs port.BlobStore, stepInterval time.Duration) *Pipeline {
	return &Pipeline{
		store:        store,
		prober:       prober,
		bus:          bus,
		blobs:        blobs,
		stepInterval: stepInterval,
	}
}

// probeDuration reads the stored blob through the blob store so probing
// works the same for every storage backend. Filesystem-backed stores are
// probed in place; remote ones are spooled to a temp file for ffprobe.
func (p *Pipeline) probeDuration(ctx context.Context, storedName string) (int64, error) {
	if local, ok := p.blobs.(localFileStore); ok {
		path, err := local.LocalPath(storedName)
		if err != nil {
			return 0, err
		}
		return p.prober.ProbeDuration(ctx, path)
	}

	content, _, err := p.blobs.Open(ctx, storedName)
	if err != nil {
		return 0, err
	}
	defer content.Close()

	tmp, err := os.CreateTemp("", "pulse-probe-*"+filepath.Ext(storedName))
	if err != nil {
		return 0, err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := io.Copy(tmp, content); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	return p.prober.ProbeDuration(ctx, path)
}

// Run executes the full state machine for one video. Exactly one run ever
// exists per asset; there is no retry or cancellation path.
func (p *Pipeline) Run(video *domain.Video) {
	ctx := context.Background()

	// Best-effort metadata enrichment: a probe failure degrades the
	// duration to null and processing continues.
	if seconds, err := p.probeDuration(ctx, video.StoredName); err != nil {
		log.Debug().Err(err).Str("video_id", video.ID).Msg("probe failed, duration stays null")
	} else {
		if err := p.store.UpdateDuration(ctx, video.TenantID, video.ID, seconds); err != nil {
			p.fail(ctx, video, err)
			return
		}
	}

	// Progress stepping: persist first, then emit, so polling the record
	// never shows less progress than the last event.
	for _, step := range domain.ProgressSteps {
		time.Sleep(p.stepInterval)

		if err := p.store.UpdateProgress(ctx, video.TenantID, video.ID, step); err != nil {
			p.fail(ctx, video, err)
			return
		}
		p.bus.Publish(video.ID, ProgressEvent{VideoID: video.ID, Progress: step})
	}

	sensitivity := domain.Classify(video.SizeBytes)
	if err := p.store.UpdateTerminal(ctx, video.TenantID, video.ID, domain.VideoStatusCompleted, sensitivity, 100); err != nil {
		p.fail(ctx, video, err)
		return
	}

	metrics.PipelineRunsTotal.WithLabelValues("completed").Inc()
	log.Info().Str("video_id", video.ID).Str("tenant", video.TenantID).
		Str("sensitivity", string(sensitivity)).Msg("processing completed")

	p.bus.Publish(video.ID, ProgressEvent{
		VideoID:     video.ID,
		Progress:    100,
		Done:        true,
		Sensitivity: sensitivity,
	})
}

// fail commits the terminal Failed state. Progress is overwritten to zero
// rather than preserved so that a failed asset reads unambiguously.
func (p *Pipeline) fail(ctx context.Context, video *domain.Video, cause error) {
	metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
	log.Error().Err(cause).Str("video_id", video.ID).Str("tenant", video.TenantID).
		Msg("processing failed")

	if err := p.store.UpdateTerminal(ctx, video.TenantID, video.ID, domain.VideoStatusFailed, domain.SensitivityPending, 0); err != nil {
		log.Error().Err(err).Str("video_id", video.ID).Msg("failed to persist failure state")
	}

	p.bus.Publish(video.ID, ProgressEvent{
		VideoID:  video.ID,
		Progress: 0,
		Error:    "Processing failed: " + cause.Error(),
	})
}
