package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/infrastructure/logger"
	"github.com/pulsevideo/pulse/internal/infrastructure/metrics"
	"github.com/pulsevideo/pulse/internal/port"
)

var (
	ErrNotVideo     = errors.New("only video files are allowed")
	ErrTooLarge     = errors.New("file exceeds the upload size limit")
	ErrNotPermitted = errors.New("not allowed to modify this video")
)

// UploadRequest carries the validated multipart fields of one upload.
type UploadRequest struct {
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Body         io.Reader
	Categories   []string
	Notes        string
}

type VideoService struct {
	store    port.VideoStore
	blobs    port.BlobStore
	pipeline *Pipeline
	maxBytes int64
}

func NewVideoService(store port.VideoStore, blobs port.BlobStore, pipeline *Pipeline, maxBytes int64) *VideoService {
	return &VideoService{
		store:    store,
		blobs:    blobs,
		pipeline: pipeline,
		maxBytes: maxBytes,
	}
}

// Ingest validates and stores an upload, creates the record in processing
// state and schedules the pipeline without waiting for it. The returned
// video is the caller's response; the first progress event always fires
// after this returns.
func (s *VideoService) Ingest(ctx context.Context, owner *domain.User, req UploadRequest) (*domain.Video, error) {
	if !strings.HasPrefix(req.MimeType, "video/") {
		return nil, ErrNotVideo
	}
	if req.SizeBytes > s.maxBytes {
		return nil, ErrTooLarge
	}

	video := domain.NewVideo(owner.ID, owner.TenantID, req.OriginalName, req.MimeType, req.SizeBytes, req.Categories, req.Notes)

	written, err := s.blobs.Write(ctx, video.StoredName, req.Body)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	video.SizeBytes = written

	if err := s.store.Create(ctx, video); err != nil {
		if delErr := s.blobs.Delete(ctx, video.StoredName); delErr != nil {
			log.Warn().Err(delErr).Str("stored_name", video.StoredName).Msg("orphaned upload cleanup failed")
		}
		return nil, fmt.Errorf("save video record: %w", err)
	}

	metrics.UploadsTotal.WithLabelValues(owner.TenantID).Inc()
	log.Info().Str("video_id", video.ID).Str("tenant", video.TenantID).
		Str("filename", logger.Sanitize(video.OriginalName)).Int64("size_bytes", video.SizeBytes).
		Msg("video uploaded")

	go s.pipeline.Run(video)

	return video, nil
}

func (s *VideoService) Get(ctx context.Context, tenantID, id string) (*domain.Video, error) {
	return s.store.Get(ctx, tenantID, id)
}

// List returns the tenant's videos, newest first, narrowed by filter.
func (s *VideoService) List(ctx context.Context, tenantID string, filter domain.VideoFilter) ([]*domain.Video, error) {
	return s.store.List(ctx, tenantID, filter)
}

// OpenContent opens the stored binary for range serving.
func (s *VideoService) OpenContent(ctx context.Context, v *domain.Video) (io.ReadSeekCloser, int64, error) {
	return s.blobs.Open(ctx, v.StoredName)
}

// Delete removes a video and its binary. Editors may delete only their own
// videos; admins may delete any video in their tenant.
func (s *VideoService) Delete(ctx context.Context, actor *domain.User, id string) error {
	video, err := s.store.Get(ctx, actor.TenantID, id)
	if err != nil {
		return err
	}

	if actor.Role != domain.RoleAdmin && video.OwnerID != actor.ID {
		return ErrNotPermitted
	}

	if err := s.blobs.Delete(ctx, video.StoredName); err != nil {
		log.Warn().Err(err).Str("video_id", id).Msg("failed to delete stored file")
	}

	return s.store.Delete(ctx, actor.TenantID, id)
}
