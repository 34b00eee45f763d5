package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
)

type storeFactory func(t *testing.T, blobs images.BlobStore) RecordStore

func recordStores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, blobs images.BlobStore) RecordStore {
			return NewMemoryRecordStore(blobs)
		},
		"sqlite": func(t *testing.T, blobs images.BlobStore) RecordStore {
			db, err := Open(filepath.Join(t.TempDir(), "thennow.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = Close(db) })
			return NewSQLRecordStore(db, blobs)
		},
	}
}

func sampleRecord(title string) models.LocationRecord {
	r := models.NewLocationRecord(title, 31.7767, 35.2345, "/data/"+title+"_historical.jpg")
	r.Notes = "notes for " + title
	r.HistoricalImageURL = "https://example.org/" + title + ".jpg"
	return r
}

func TestRecordStoreAddList(t *testing.T) {
	ctx := context.Background()
	for name, factory := range recordStores() {
		t.Run(name, func(t *testing.T) {
			store := factory(t, nil)
			a := sampleRecord("a")
			b := sampleRecord("b")
			b.SetNewImage("/data/b_new.jpg", "https://example.org/b_new.jpg", models.Now().Add(time.Second))

			require.NoError(t, store.Add(ctx, a))
			require.NoError(t, store.Add(ctx, b))

			records, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, a, records[0])
			assert.Equal(t, b, records[1])

			err = store.Add(ctx, a)
			assert.ErrorIs(t, err, models.ErrDuplicateID)

			got, err := store.Get(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, b, got)

			_, err = store.Get(ctx, "missing")
			assert.ErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestRecordStoreUpdate(t *testing.T) {
	ctx := context.Background()
	for name, factory := range recordStores() {
		t.Run(name, func(t *testing.T) {
			store := factory(t, nil)
			a := sampleRecord("a")
			require.NoError(t, store.Add(ctx, a))

			unknown := sampleRecord("ghost")
			require.NoError(t, store.Update(ctx, unknown))

			records, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.LocationRecord{a}, records)

			a.UpdateStatus(models.StatusInaccessible, models.Now())
			require.NoError(t, store.Update(ctx, a))

			records, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, a, records[0])
		})
	}
}

func TestRecordStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, factory := range recordStores() {
		t.Run(name, func(t *testing.T) {
			blobs, err := images.NewStore(t.TempDir())
			require.NoError(t, err)
			store := factory(t, blobs)

			hist, err := blobs.Save("a_historical.jpg", []byte("h"))
			require.NoError(t, err)
			newPath, err := blobs.Save("a_new.jpg", []byte("n"))
			require.NoError(t, err)

			a := sampleRecord("a")
			a.HistoricalImagePath = hist
			a.SetNewImage(newPath, "", models.Now())
			b := sampleRecord("b")
			require.NoError(t, store.Add(ctx, a))
			require.NoError(t, store.Add(ctx, b))

			require.NoError(t, store.Delete(ctx, a.ID))
			require.NoError(t, store.Delete(ctx, a.ID))

			records, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.LocationRecord{b}, records)

			_, ok := blobs.Load(hist)
			assert.False(t, ok)
			_, ok = blobs.Load(newPath)
			assert.False(t, ok)
		})
	}
}

func TestRecordStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	for name, factory := range recordStores() {
		t.Run(name, func(t *testing.T) {
			store := factory(t, nil)
			a := sampleRecord("a")
			b := sampleRecord("b")
			require.NoError(t, store.Add(ctx, a))
			require.NoError(t, store.Add(ctx, b))

			b2 := b
			b2.UpdateNotes("remote edit", models.Now())
			c := sampleRecord("c")
			require.NoError(t, store.ReplaceAll(ctx, []models.LocationRecord{b2, c}))

			records, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.LocationRecord{b2, c}, records)

			require.NoError(t, store.ReplaceAll(ctx, nil))
			records, err = store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestSQLRecordStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "thennow.db")

	db, err := Open(path)
	require.NoError(t, err)
	a := sampleRecord("a")
	require.NoError(t, NewSQLRecordStore(db, nil).Add(ctx, a))
	require.NoError(t, Close(db))

	db, err = Open(path)
	require.NoError(t, err)
	defer Close(db)

	records, err := NewSQLRecordStore(db, nil).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.LocationRecord{a}, records)
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()

	db, err := Open(filepath.Join(t.TempDir(), "thennow.db"))
	require.NoError(t, err)
	defer Close(db)

	stores := map[string]*Settings{
		"memory": NewMemorySettingsStore(),
		"sqlite": NewSQLSettingsStore(db),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, models.DefaultSettings(), store.Load(ctx))

			settings := models.AppSettings{ImageQuality: models.QualityLow}
			settings.MarkSynced(models.Now())
			require.NoError(t, store.Save(ctx, settings))

			loaded := store.Load(ctx)
			assert.Equal(t, settings.ImageQuality, loaded.ImageQuality)
			require.NotNil(t, loaded.LastSyncDate)
			assert.True(t, settings.LastSyncDate.Equal(*loaded.LastSyncDate))

			settings.ImageQuality = models.QualityMedium
			require.NoError(t, store.Save(ctx, settings))
			assert.Equal(t, models.QualityMedium, store.Load(ctx).ImageQuality)
		})
	}
}

func TestSettingsStoreSwallowsDecodeFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
	}{
		{"not yaml", "image_quality: [unterminated"},
		{"unknown quality", "image_quality: ultra\n"},
		{"wrong type", "image_quality:\n  nested: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemorySettingsStore()
			require.NoError(t, store.kv.put(ctx, SettingsKey, []byte(tt.raw)))
			assert.Equal(t, models.DefaultSettings(), store.Load(ctx))
		})
	}
}
