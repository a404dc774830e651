package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsevideo/pulse/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedVideo(t *testing.T, store *Store, tenantID, name string, size int64) *domain.Video {
	t.Helper()
	v := domain.NewVideo("owner-1", tenantID, name, "video/mp4", size, nil, "")
	require.NoError(t, store.Create(context.Background(), v))
	return v
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := domain.NewVideo("owner-1", "acme", "trip.mp4", "video/mp4", 42, []string{"travel", "family"}, "summer trip")
	require.NoError(t, store.Create(ctx, v))

	got, err := store.Get(ctx, "acme", v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, "trip.mp4", got.OriginalName)
	assert.Equal(t, []string{"travel", "family"}, got.Categories)
	assert.Equal(t, "summer trip", got.Notes)
	assert.Equal(t, domain.VideoStatusProcessing, got.Status)
	assert.Equal(t, domain.SensitivityPending, got.Sensitivity)
	assert.Nil(t, got.DurationSeconds)
}

func TestStore_Get_TenantIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := seedVideo(t, store, "acme", "trip.mp4", 42)

	_, err := store.Get(ctx, "globex", v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Get_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "acme", "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpdateProgress(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	v := seedVideo(t, store, "acme", "trip.mp4", 42)

	require.NoError(t, store.UpdateProgress(ctx, "acme", v.ID, 60))

	got, err := store.Get(ctx, "acme", v.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Progress)

	assert.ErrorIs(t, store.UpdateProgress(ctx, "globex", v.ID, 80), domain.ErrNotFound)
}

func TestStore_UpdateDuration_WritesOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	v := seedVideo(t, store, "acme", "trip.mp4", 42)

	require.NoError(t, store.UpdateDuration(ctx, "acme", v.ID, 37))
	require.NoError(t, store.UpdateDuration(ctx, "acme", v.ID, 99))

	got, err := store.Get(ctx, "acme", v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DurationSeconds)
	assert.Equal(t, int64(37), *got.DurationSeconds)
}

func TestStore_UpdateTerminal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	v := seedVideo(t, store, "acme", "trip.mp4", 42)

	require.NoError(t, store.UpdateTerminal(ctx, "acme", v.ID, domain.VideoStatusCompleted, domain.SensitivitySafe, 100))

	got, err := store.Get(ctx, "acme", v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VideoStatusCompleted, got.Status)
	assert.Equal(t, domain.SensitivitySafe, got.Sensitivity)
	assert.Equal(t, 100, got.Progress)
}

func TestStore_UpdateTerminal_FailureOverwritesProgress(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	v := seedVideo(t, store, "acme", "trip.mp4", 42)

	require.NoError(t, store.UpdateProgress(ctx, "acme", v.ID, 60))
	require.NoError(t, store.UpdateTerminal(ctx, "acme", v.ID, domain.VideoStatusFailed, domain.SensitivityPending, 0))

	got, err := store.Get(ctx, "acme", v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VideoStatusFailed, got.Status)
	assert.Equal(t, domain.SensitivityPending, got.Sensitivity)
	assert.Equal(t, 0, got.Progress)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	v := seedVideo(t, store, "acme", "trip.mp4", 42)

	assert.ErrorIs(t, store.Delete(ctx, "globex", v.ID), domain.ErrNotFound)
	require.NoError(t, store.Delete(ctx, "acme", v.ID))

	_, err := store.Get(ctx, "acme", v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_List_ScopedAndOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := domain.NewVideo("owner-1", "acme", "older.mp4", "video/mp4", 10, nil, "")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.Create(ctx, older))
	newer := seedVideo(t, store, "acme", "newer.mp4", 20)
	seedVideo(t, store, "globex", "other-tenant.mp4", 30)

	videos, err := store.List(ctx, "acme", domain.VideoFilter{})
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, newer.ID, videos[0].ID, "newest first")
	assert.Equal(t, older.ID, videos[1].ID)
}

func TestStore_ReadsResolveOwner(t *testing.T) {
	store := newTestStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	owner := domain.NewUser("ana@acme.test", "hash", "Ana", "acme", domain.RoleEditor)
	require.NoError(t, users.Create(ctx, owner))

	owned := domain.NewVideo(owner.ID, "acme", "owned.mp4", "video/mp4", 10, nil, "")
	require.NoError(t, store.Create(ctx, owned))
	seedVideo(t, store, "acme", "orphan.mp4", 20)

	got, err := store.Get(ctx, "acme", owned.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "Ana", got.Owner.Name)
	assert.Equal(t, "ana@acme.test", got.Owner.Email)

	videos, err := store.List(ctx, "acme", domain.VideoFilter{})
	require.NoError(t, err)
	require.Len(t, videos, 2)
	for _, v := range videos {
		if v.ID == owned.ID {
			require.NotNil(t, v.Owner)
			assert.Equal(t, "Ana", v.Owner.Name)
		} else {
			assert.Nil(t, v.Owner, "owner without a user row stays nil")
		}
	}
}

func TestStore_List_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	small := seedVideo(t, store, "acme", "beach day.mp4", 100)
	big := seedVideo(t, store, "acme", "conference.webm", 5000)
	require.NoError(t, store.UpdateTerminal(ctx, "acme", big.ID, domain.VideoStatusCompleted, domain.SensitivityFlagged, 100))

	t.Run("status", func(t *testing.T) {
		videos, err := store.List(ctx, "acme", domain.VideoFilter{Status: domain.VideoStatusCompleted})
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, big.ID, videos[0].ID)
	})

	t.Run("sensitivity", func(t *testing.T) {
		videos, err := store.List(ctx, "acme", domain.VideoFilter{Sensitivity: domain.SensitivityFlagged})
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, big.ID, videos[0].ID)
	})

	t.Run("search substring", func(t *testing.T) {
		videos, err := store.List(ctx, "acme", domain.VideoFilter{Search: "each"})
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, small.ID, videos[0].ID)
	})

	t.Run("search no match", func(t *testing.T) {
		videos, err := store.List(ctx, "acme", domain.VideoFilter{Search: "zzz"})
		require.NoError(t, err)
		assert.Empty(t, videos)
	})

	t.Run("size range", func(t *testing.T) {
		minSize, maxSize := int64(50), int64(200)
		videos, err := store.List(ctx, "acme", domain.VideoFilter{MinSize: &minSize, MaxSize: &maxSize})
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, small.ID, videos[0].ID)
	})

	t.Run("date range includes end day", func(t *testing.T) {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		videos, err := store.List(ctx, "acme", domain.VideoFilter{DateFrom: &today, DateTo: &today})
		require.NoError(t, err)
		assert.Len(t, videos, 2)
	})

	t.Run("date range excludes future", func(t *testing.T) {
		tomorrow := time.Now().UTC().AddDate(0, 0, 1)
		videos, err := store.List(ctx, "acme", domain.VideoFilter{DateFrom: &tomorrow})
		require.NoError(t, err)
		assert.Empty(t, videos)
	})
}

func TestUserStore_CreateAndLookup(t *testing.T) {
	store := newTestStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	u := domain.NewUser("ana@acme.test", "hash", "Ana", "acme", domain.RoleAdmin)
	require.NoError(t, users.Create(ctx, u))

	byEmail, err := users.GetByEmail(ctx, "ana@acme.test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)
	assert.Equal(t, domain.RoleAdmin, byID.Role)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, domain.NewUser("ana@acme.test", "hash", "Ana", "acme", domain.RoleEditor)))
	err := users.Create(ctx, domain.NewUser("ana@acme.test", "hash", "Other", "globex", domain.RoleEditor))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserStore_RoleAndAdminCount(t *testing.T) {
	store := newTestStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	admin := domain.NewUser("admin@acme.test", "hash", "Admin", "acme", domain.RoleAdmin)
	editor := domain.NewUser("editor@acme.test", "hash", "Editor", "acme", domain.RoleEditor)
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, users.Create(ctx, editor))
	require.NoError(t, users.Create(ctx, domain.NewUser("admin@globex.test", "hash", "Other", "globex", domain.RoleAdmin)))

	n, err := users.CountAdmins(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, users.UpdateRole(ctx, "acme", editor.ID, domain.RoleAdmin))
	n, err = users.CountAdmins(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, users.UpdateRole(ctx, "globex", editor.ID, domain.RoleViewer), domain.ErrNotFound)
}

func TestUserStore_Delete(t *testing.T) {
	store := newTestStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	u := domain.NewUser("ana@acme.test", "hash", "Ana", "acme", domain.RoleEditor)
	require.NoError(t, users.Create(ctx, u))

	assert.ErrorIs(t, users.Delete(ctx, "globex", u.ID), domain.ErrNotFound)
	require.NoError(t, users.Delete(ctx, "acme", u.ID))
	_, err := users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserStore_ListByTenant(t *testing.T) {
	store := newTestStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, domain.NewUser("a@acme.test", "hash", "A", "acme", domain.RoleEditor)))
	require.NoError(t, users.Create(ctx, domain.NewUser("b@acme.test", "hash", "B", "acme", domain.RoleViewer)))
	require.NoError(t, users.Create(ctx, domain.NewUser("c@globex.test", "hash", "C", "globex", domain.RoleAdmin)))

	list, err := users.ListByTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
