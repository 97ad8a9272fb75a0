package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/homeinv/barcode-router/internal/config"
	"github.com/homeinv/barcode-router/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	snapshot  *models.BatchSnapshot
	loadErr   error
	saveErr   error
	saveCount int
}

func (f *fakeRepo) Load(ctx context.Context, instance string) (*models.BatchSnapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.snapshot == nil {
		return nil, models.ErrNotFound
	}
	return f.snapshot, nil
}

func (f *fakeRepo) Save(ctx context.Context, instance string, snapshot *models.BatchSnapshot) error {
	f.saveCount++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snapshot = snapshot
	return nil
}

func newTestStore(repo *fakeRepo) *Store {
	return NewStore(repo, &config.Config{Instance: "test"})
}

func metadata(barcode, title string) *models.ProductMetadata {
	return &models.ProductMetadata{Barcode: barcode, Title: title}
}

func TestAddItemNew(t *testing.T) {
	store := newTestStore(&fakeRepo{})

	item := store.AddItem("123", metadata("123", "Oat Milk"), models.BackendGrocy, false, nil)

	assert.Equal(t, "123", item.Barcode)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, models.StatusPending, item.Status)
	assert.NotNil(t, item.PendingConfirmation, "new unknown items await confirmation fields")
	assert.Nil(t, item.ItemInfo)
}

func TestAddItemExistingHasNoPendingConfirmation(t *testing.T) {
	store := newTestStore(&fakeRepo{})

	info := &models.ItemInfo{ID: "7", Name: "Oat Milk"}
	item := store.AddItem("123", metadata("123", "Oat Milk"), models.BackendGrocy, true, info)

	assert.Nil(t, item.PendingConfirmation)
	assert.Equal(t, info, item.ItemInfo)
}

func TestAddItemMergesOnRescan(t *testing.T) {
	store := newTestStore(&fakeRepo{})

	store.AddItem("123", metadata("123", "Oat Milk"), models.BackendGrocy, false, nil)
	status := models.StatusProcessed
	store.UpdateItem("123", ItemUpdate{Status: &status})

	merged := store.AddItem("123", metadata("123", "Oat Milk Fresh"), models.BackendGrocy, true, &models.ItemInfo{ID: "9"})

	assert.Equal(t, 2, merged.Quantity)
	assert.Equal(t, models.StatusPending, merged.Status, "re-scan resets status")
	assert.Equal(t, "Oat Milk Fresh", merged.UPCData.Title)
	assert.True(t, merged.Exists)

	items := store.Items()
	require.Len(t, items, 1, "barcode is unique within a batch")
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddItemKeepsOrderOfFirstScan(t *testing.T) {
	store := newTestStore(&fakeRepo{})

	store.AddItem("a", nil, models.BackendGrocy, false, nil)
	store.AddItem("b", nil, models.BackendHomebox, false, nil)
	store.AddItem("a", nil, models.BackendGrocy, false, nil)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Barcode)
	assert.Equal(t, "b", items[1].Barcode)
}

func TestUpdateItem(t *testing.T) {
	store := newTestStore(&fakeRepo{})
	store.AddItem("123", nil, models.BackendGrocy, false, nil)

	quantity := 5
	ok := store.UpdateItem("123", ItemUpdate{Quantity: &quantity})
	require.True(t, ok)

	item, found := store.Item("123")
	require.True(t, found)
	assert.Equal(t, 5, item.Quantity)

	assert.False(t, store.UpdateItem("missing", ItemUpdate{Quantity: &quantity}))
}

func TestRemoveItem(t *testing.T) {
	store := newTestStore(&fakeRepo{})
	store.AddItem("123", nil, models.BackendGrocy, false, nil)

	assert.True(t, store.RemoveItem("123"))
	assert.False(t, store.RemoveItem("123"))
	assert.Empty(t, store.Items())
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(&fakeRepo{})
	store.AddItem("123", nil, models.BackendGrocy, false, nil)
	store.SetMode(models.ModeSingle)

	store.Clear()
	store.Clear()

	assert.Empty(t, store.Items())
	assert.Equal(t, models.ModeBatch, store.Mode())
}

func TestLoadRestoresSnapshot(t *testing.T) {
	repo := &fakeRepo{snapshot: &models.BatchSnapshot{
		Version: models.SnapshotVersion,
		Items: []models.BatchItem{
			{Barcode: "123", Quantity: 2, Status: models.StatusPending},
		},
		Mode: models.ModeSingle,
	}}
	store := newTestStore(repo)

	store.Load(context.Background())

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "123", items[0].Barcode)
	assert.Equal(t, models.ModeSingle, store.Mode())
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	repo := &fakeRepo{loadErr: errors.New("connection refused")}
	store := newTestStore(repo)

	store.Load(context.Background())

	assert.Empty(t, store.Items())
	assert.Equal(t, models.ModeBatch, store.Mode())
}

func TestSavePersistsSnapshot(t *testing.T) {
	repo := &fakeRepo{}
	store := newTestStore(repo)
	store.AddItem("123", metadata("123", "Oat Milk"), models.BackendGrocy, false, nil)

	require.NoError(t, store.Save(context.Background()))
	require.NotNil(t, repo.snapshot)
	assert.Equal(t, models.SnapshotVersion, repo.snapshot.Version)
	require.Len(t, repo.snapshot.Items, 1)
	assert.Equal(t, "123", repo.snapshot.Items[0].Barcode)
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("disk full")}
	store := newTestStore(repo)
	store.AddItem("123", nil, models.BackendGrocy, false, nil)

	assert.Error(t, store.Save(context.Background()))
	assert.Len(t, store.Items(), 1)
}
