package port

import "context"

// Prober inspects a stored file for container metadata. Callers treat a
// probe failure as best-effort enrichment, not a fatal error.
type Prober interface {
	// ProbeDuration returns the media duration rounded to whole seconds.
	ProbeDuration(ctx context.Context, path string) (int64, error)
}
