package landing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framehaus/framehaus/internal/db"
	"github.com/framehaus/framehaus/internal/models"
)

type fakeLandingStore struct {
	brands    map[uuid.UUID]*models.Brand
	drafts    map[uuid.UUID]*models.LandingDraft
	snapshots map[uuid.UUID][]*models.LandingSnapshot
}

func newFakeLandingStore() *fakeLandingStore {
	return &fakeLandingStore{
		brands:    make(map[uuid.UUID]*models.Brand),
		drafts:    make(map[uuid.UUID]*models.LandingDraft),
		snapshots: make(map[uuid.UUID][]*models.LandingSnapshot),
	}
}

func (f *fakeLandingStore) addBrand(name, slug string) *models.Brand {
	brand := models.NewBrand(name, slug, slug, "owner@"+slug+".test", uuid.New())
	f.brands[brand.ID] = brand
	return brand
}

func (f *fakeLandingStore) GetBrandByID(_ context.Context, id uuid.UUID) (*models.Brand, error) {
	return f.brands[id], nil
}

func (f *fakeLandingStore) GetBrandBySlug(_ context.Context, slug string) (*models.Brand, error) {
	for _, b := range f.brands {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeLandingStore) GetLandingDraft(_ context.Context, brandID uuid.UUID) (*models.LandingDraft, error) {
	return f.drafts[brandID], nil
}

func (f *fakeLandingStore) UpsertLandingDraft(_ context.Context, draft *models.LandingDraft) error {
	f.drafts[draft.BrandID] = draft
	return nil
}

func (f *fakeLandingStore) PublishLandingSnapshot(_ context.Context, brandID uuid.UUID) (*models.LandingSnapshot, error) {
	draft, ok := f.drafts[brandID]
	if !ok {
		return nil, db.ErrNoDraft
	}
	snapshot := &models.LandingSnapshot{
		BrandID:     brandID,
		Version:     len(f.snapshots[brandID]) + 1,
		Sections:    draft.Sections,
		PublishedAt: time.Now(),
	}
	f.snapshots[brandID] = append(f.snapshots[brandID], snapshot)
	return snapshot, nil
}

func (f *fakeLandingStore) GetLatestLandingSnapshot(_ context.Context, brandID uuid.UUID) (*models.LandingSnapshot, error) {
	all := f.snapshots[brandID]
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

type fakeCache struct {
	entries map[string][]byte
	hits    int
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := f.entries[key]
	if ok {
		f.hits++
	}
	return data, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.sets++
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.deletes++
	delete(f.entries, key)
	return nil
}

func heroSection(t *testing.T, headline string) models.Section {
	t.Helper()
	body, err := json.Marshal(map[string]string{"headline": headline})
	require.NoError(t, err)
	return models.Section{Type: models.SectionHero, Body: body}
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("valid sections", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		err := svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "Welcome")})
		require.NoError(t, err)

		draft, err := svc.GetDraft(ctx, brand.ID)
		require.NoError(t, err)
		assert.Len(t, draft.Sections, 1)
	})

	t.Run("unknown section type", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		err := svc.SaveDraft(ctx, brand.ID, []models.Section{
			{Type: "carousel", Body: json.RawMessage(`{}`)},
		})
		assert.ErrorIs(t, err, ErrInvalidSection)
	})

	t.Run("invalid body", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		err := svc.SaveDraft(ctx, brand.ID, []models.Section{
			{Type: models.SectionText, Body: json.RawMessage(`{broken`)},
		})
		assert.ErrorIs(t, err, ErrInvalidSection)
	})

	t.Run("too many sections", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		sections := make([]models.Section, MaxSections+1)
		for i := range sections {
			sections[i] = heroSection(t, "x")
		}
		err := svc.SaveDraft(ctx, brand.ID, sections)
		assert.ErrorIs(t, err, ErrInvalidSection)
	})
}

func TestPublishAndServe(t *testing.T) {
	ctx := context.Background()

	t.Run("draft stays hidden until publish", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		require.NoError(t, svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "Welcome")}))

		published, err := svc.Published(ctx, "acme-photo")
		require.NoError(t, err)
		assert.Nil(t, published)

		snapshot, err := svc.Publish(ctx, brand.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, snapshot.Version)

		published, err = svc.Published(ctx, "acme-photo")
		require.NoError(t, err)
		require.NotNil(t, published)
		assert.Len(t, published.Sections, 1)
	})

	t.Run("publish bumps version and old snapshots survive", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		require.NoError(t, svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "v1")}))
		first, err := svc.Publish(ctx, brand.ID)
		require.NoError(t, err)

		require.NoError(t, svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "v2")}))
		second, err := svc.Publish(ctx, brand.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Version+1, second.Version)
		assert.Len(t, store.snapshots[brand.ID], 2)
	})

	t.Run("publish without draft fails", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		_, err := svc.Publish(ctx, brand.ID)
		assert.Error(t, err)
	})

	t.Run("unknown slug", func(t *testing.T) {
		store := newFakeLandingStore()
		svc := NewService(store, nil, zerolog.Nop())

		_, err := svc.Published(ctx, "nobody")
		assert.ErrorIs(t, err, ErrBrandNotFound)
	})

	t.Run("suspended brand does not serve", func(t *testing.T) {
		store := newFakeLandingStore()
		brand := store.addBrand("Acme Photo", "acme-photo")
		svc := NewService(store, nil, zerolog.Nop())

		require.NoError(t, svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "Welcome")}))
		_, err := svc.Publish(ctx, brand.ID)
		require.NoError(t, err)

		brand.Status = models.BrandStatusSuspended
		_, err = svc.Published(ctx, "acme-photo")
		assert.ErrorIs(t, err, ErrBrandInactive)
	})
}

func TestPublishedCache(t *testing.T) {
	ctx := context.Background()

	store := newFakeLandingStore()
	brand := store.addBrand("Acme Photo", "acme-photo")
	cache := newFakeCache()
	svc := NewService(store, cache, zerolog.Nop())

	require.NoError(t, svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "v1")}))
	_, err := svc.Publish(ctx, brand.ID)
	require.NoError(t, err)

	// First read misses and fills the cache; second read hits it.
	_, err = svc.Published(ctx, "acme-photo")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.Published(ctx, "acme-photo")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// Publishing again invalidates the cached page.
	require.NoError(t, svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "v2")}))
	_, err = svc.Publish(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)

	published, err := svc.Published(ctx, "acme-photo")
	require.NoError(t, err)
	assert.Equal(t, 2, published.Version)
}

func TestPublishedCacheDoesNotOutliveSuspension(t *testing.T) {
	ctx := context.Background()

	store := newFakeLandingStore()
	brand := store.addBrand("Acme Photo", "acme-photo")
	cache := newFakeCache()
	svc := NewService(store, cache, zerolog.Nop())

	require.NoError(t, svc.SaveDraft(ctx, brand.ID, []models.Section{heroSection(t, "Welcome")}))
	_, err := svc.Publish(ctx, brand.ID)
	require.NoError(t, err)

	// Warm the cache while the brand is active.
	_, err = svc.Published(ctx, "acme-photo")
	require.NoError(t, err)
	require.Contains(t, cache.entries, "landing:acme-photo")

	// Suspension takes effect on the next read, cached page or not, and the
	// stale entry is dropped.
	brand.Status = models.BrandStatusSuspended
	_, err = svc.Published(ctx, "acme-photo")
	assert.ErrorIs(t, err, ErrBrandInactive)
	assert.NotContains(t, cache.entries, "landing:acme-photo")

	// Reactivation serves again without a publish.
	brand.Status = models.BrandStatusActive
	published, err := svc.Published(ctx, "acme-photo")
	require.NoError(t, err)
	assert.Equal(t, 1, published.Version)
}
