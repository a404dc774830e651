package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pulsevideo/pulse/internal/domain"
)

// fakeVideoStore is an in-memory VideoStore that records mutations in call
// order and can be told to fail a specific progress write.
type fakeVideoStore struct {
	mu     sync.Mutex
	videos map[string]*domain.Video // key: tenant + "/" + id
	log    []string                 // shared op log, also appended by recorderBus

	failProgressAt int // fail UpdateProgress when called with this value, 0 = never
	failTerminal   bool
	progressErr    error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]*domain.Video)}
}

func (f *fakeVideoStore) key(tenantID, id string) string { return tenantID + "/" + id }

func (f *fakeVideoStore) appendLog(entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, entry)
}

func (f *fakeVideoStore) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

func (f *fakeVideoStore) Create(_ context.Context, v *domain.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *v
	f.videos[f.key(v.TenantID, v.ID)] = &copied
	return nil
}

func (f *fakeVideoStore) Get(_ context.Context, tenantID, id string) (*domain.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[f.key(tenantID, id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVideoStore) List(_ context.Context, tenantID string, _ domain.VideoFilter) ([]*domain.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Video
	for k, v := range f.videos {
		if strings.HasPrefix(k, tenantID+"/") {
			copied := *v
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeVideoStore) UpdateProgress(_ context.Context, tenantID, id string, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProgressAt != 0 && progress == f.failProgressAt {
		return f.progressErr
	}
	v, ok := f.videos[f.key(tenantID, id)]
	if !ok {
		return domain.ErrNotFound
	}
	v.Progress = progress
	f.log = append(f.log, "write:progress:"+strconv.Itoa(progress))
	return nil
}

func (f *fakeVideoStore) UpdateDuration(_ context.Context, tenantID, id string, seconds int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[f.key(tenantID, id)]
	if !ok {
		return domain.ErrNotFound
	}
	v.DurationSeconds = &seconds
	f.log = append(f.log, "write:duration")
	return nil
}

func (f *fakeVideoStore) UpdateTerminal(_ context.Context, tenantID, id string, status domain.VideoStatus, sensitivity domain.Sensitivity, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTerminal && status == domain.VideoStatusCompleted {
		return f.progressErr
	}
	v, ok := f.videos[f.key(tenantID, id)]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = status
	v.Sensitivity = sensitivity
	v.Progress = progress
	f.log = append(f.log, "write:terminal:"+string(status))
	return nil
}

func (f *fakeVideoStore) Delete(_ context.Context, tenantID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[f.key(tenantID, id)]; !ok {
		return domain.ErrNotFound
	}
	delete(f.videos, f.key(tenantID, id))
	return nil
}


// recorderBus captures published events in order and mirrors them into the
// store's op log for write-then-emit assertions.
type recorderBus struct {
	mu     sync.Mutex
	events []ProgressEvent
	store  *fakeVideoStore
}

func (r *recorderBus) Publish(_ string, event ProgressEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	if r.store != nil {
		r.store.appendLog("emit:" + strconv.Itoa(event.Progress))
	}
}

func (r *recorderBus) published() []ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressEvent(nil), r.events...)
}

// fakeProber returns a fixed duration or error.
type fakeProber struct {
	seconds int64
	err     error
}

func (f *fakeProber) ProbeDuration(context.Context, string) (int64, error) {
	return f.seconds, f.err
}

// fakeBlobStore keeps blobs in memory.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	err   error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Write(_ context.Context, name string, r io.Reader) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[name] = data
	return int64(len(data)), nil
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

func (f *fakeBlobStore) Open(_ context.Context, name string) (io.ReadSeekCloser, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[name]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	return nopReadSeekCloser{bytes.NewReader(data)}, int64(len(data)), nil
}

func (f *fakeBlobStore) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, name)
	return nil
}

func (f *fakeBlobStore) Exists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[name]
	return ok, nil
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) ListByTenant(_ context.Context, tenantID string) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, u := range f.users {
		if u.TenantID == tenantID {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, tenantID, id string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, tenantID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) CountAdmins(_ context.Context, tenantID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, u := range f.users {
		if u.TenantID == tenantID && u.Role == domain.RoleAdmin {
			count++
		}
	}
	return count, nil
}
