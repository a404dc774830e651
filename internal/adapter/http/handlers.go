package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pulsevideo/pulse/internal/adapter/http/validation"
	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/service"
)

// VideoService is the slice of the video layer the HTTP adapter needs.
type VideoService interface {
	Ingest(ctx context.Context, owner *domain.User, req service.UploadRequest) (*domain.Video, error)
	Get(ctx context.Context, tenantID, id string) (*domain.Video, error)
	List(ctx context.Context, tenantID string, filter domain.VideoFilter) ([]*domain.Video, error)
	OpenContent(ctx context.Context, v *domain.Video) (io.ReadSeekCloser, int64, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

type Handlers struct {
	videoSvc VideoService
	maxBytes int64
}

func NewHandlers(videoSvc VideoService, maxBytes int64) *Handlers {
	return &Handlers{videoSvc: videoSvc, maxBytes: maxBytes}
}

// multipartMemory caps how much of a parsed form is held in memory; the
// rest spills to temp files.
const multipartMemory = 32 << 20

func (h *Handlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		if !user.CanUpload() {
			writeMessage(w, http.StatusForbidden, "upload requires editor or admin role")
			return
		}

		// Allow some slack over the file limit for the other form fields.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemory)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeMessage(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
			return
		}

		file, header, err := r.FormFile("video")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "missing video file field")
			return
		}
		defer file.Close()

		if header.Size > h.maxBytes {
			writeError(w, service.ErrTooLarge)
			return
		}

		mime, allowed, err := validation.DetectVideoType(file)
		if err != nil {
			writeError(w, err)
			return
		}
		if !allowed {
			writeError(w, service.ErrNotVideo)
			return
		}

		video, err := h.videoSvc.Ingest(r.Context(), user, service.UploadRequest{
			OriginalName: header.Filename,
			MimeType:     mime,
			SizeBytes:    header.Size,
			Body:         file,
			Categories:   splitCategories(r.FormValue("categories")),
			Notes:        r.FormValue("notes"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]*domain.Video{"video": video})
	}
}

func splitCategories(raw string) []string {
	if raw == "" {
		return nil
	}
	var categories []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	return categories
}

func (h *Handlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		filter, err := filterFromQuery(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		videos, err := h.videoSvc.List(r.Context(), user.TenantID, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		if videos == nil {
			videos = []*domain.Video{}
		}
		writeJSON(w, http.StatusOK, map[string][]*domain.Video{"videos": videos})
	}
}

func filterFromQuery(r *http.Request) (domain.VideoFilter, error) {
	var filter domain.VideoFilter
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		if !domain.ValidVideoStatus(status) {
			return filter, errInvalidQuery("status", status)
		}
		filter.Status = domain.VideoStatus(status)
	}
	if sensitivity := q.Get("sensitivityStatus"); sensitivity != "" {
		if !domain.ValidSensitivity(sensitivity) {
			return filter, errInvalidQuery("sensitivityStatus", sensitivity)
		}
		filter.Sensitivity = domain.Sensitivity(sensitivity)
	}
	filter.Search = q.Get("search")

	if raw := q.Get("minSize"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errInvalidQuery("minSize", raw)
		}
		filter.MinSize = &n
	}
	if raw := q.Get("maxSize"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errInvalidQuery("maxSize", raw)
		}
		filter.MaxSize = &n
	}
	if raw := q.Get("dateFrom"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errInvalidQuery("dateFrom", raw)
		}
		filter.DateFrom = &t
	}
	if raw := q.Get("dateTo"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errInvalidQuery("dateTo", raw)
		}
		filter.DateTo = &t
	}
	return filter, nil
}

type queryError struct {
	param string
	value string
}

func (e queryError) Error() string {
	return "invalid " + e.param + " value " + strconv.Quote(e.value)
}

func errInvalidQuery(param, value string) error {
	return queryError{param: param, value: value}
}

func (h *Handlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		video, err := h.videoSvc.Get(r.Context(), user.TenantID, r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]*domain.Video{"video": video})
	}
}

// Stream serves the stored bytes with single-range support. An invalid
// Range header falls back to the full representation; an unsatisfiable one
// is a 416 carrying the asset size.
func (h *Handlers) Stream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)

		video, err := h.videoSvc.Get(r.Context(), user.TenantID, r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}

		content, size, err := h.videoSvc.OpenContent(r.Context(), video)
		if err != nil {
			writeError(w, err)
			return
		}
		defer content.Close()

		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Type", video.MimeType)

		rng, err := ParseRange(r.Header.Get("Range"), size)
		switch {
		case err == ErrUnsatisfiable:
			w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
			writeMessage(w, http.StatusRequestedRangeNotSatisfiable, "range not satisfiable")
			return
		case err == ErrInvalidRange:
			rng = nil
		}

		if rng == nil {
			w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
			w.WriteHeader(http.StatusOK)
			if _, err := io.Copy(w, content); err != nil {
				log.Debug().Err(err).Str("video_id", video.ID).Msg("stream interrupted")
			}
			return
		}

		if _, err := content.Seek(rng.Start, io.SeekStart); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Range", rng.ContentRange(size))
		w.Header().Set("Content-Length", strconv.FormatInt(rng.ContentLength(), 10))
		w.WriteHeader(http.StatusPartialContent)
		if _, err := io.CopyN(w, content, rng.ContentLength()); err != nil {
			log.Debug().Err(err).Str("video_id", video.ID).Msg("stream interrupted")
		}
	}
}

func (h *Handlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		if !user.CanUpload() {
			writeMessage(w, http.StatusForbidden, "delete requires editor or admin role")
			return
		}

		if err := h.videoSvc.Delete(r.Context(), user, r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
