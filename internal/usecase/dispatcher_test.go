package usecase

import (
	"context"
	"testing"

	"github.com/homeinv/barcode-router/internal/backends"
	"github.com/homeinv/barcode-router/internal/batch"
	"github.com/homeinv/barcode-router/internal/classifier"
	"github.com/homeinv/barcode-router/internal/config"
	"github.com/homeinv/barcode-router/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	data map[string]*models.ProductMetadata
}

func (f *fakeCatalog) Lookup(ctx context.Context, barcode string, useCache bool) *models.ProductMetadata {
	return f.data[barcode]
}

func (f *fakeCatalog) Clear() {}

type fakeBackend struct {
	name        string
	exists      map[string]bool
	info        map[string]*models.ItemInfo
	addOK       bool
	createOK    bool
	addCalls    []string
	createCalls []backends.ItemData
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) CheckItemExists(ctx context.Context, barcode string) bool {
	return f.exists[barcode]
}

func (f *fakeBackend) GetItemInfo(ctx context.Context, barcode string) *models.ItemInfo {
	return f.info[barcode]
}

func (f *fakeBackend) AddQuantity(ctx context.Context, barcode string, quantity int, opts *backends.StockOptions) bool {
	f.addCalls = append(f.addCalls, barcode)
	return f.addOK
}

func (f *fakeBackend) CreateItem(ctx context.Context, item backends.ItemData) bool {
	f.createCalls = append(f.createCalls, item)
	return f.createOK
}

func (f *fakeBackend) RequiredFields() []backends.FieldDescriptor { return nil }
func (f *fakeBackend) Ping(ctx context.Context) error             { return nil }
func (f *fakeBackend) Close() error                               { return nil }

type fakeNotifier struct {
	notified int
	last     models.BatchSnapshot
}

func (f *fakeNotifier) NotifyBatchUpdated(snapshot models.BatchSnapshot) {
	f.notified++
	f.last = snapshot
}

type countingRepo struct {
	saveCount int
}

func (c *countingRepo) Load(ctx context.Context, instance string) (*models.BatchSnapshot, error) {
	return nil, models.ErrNotFound
}

func (c *countingRepo) Save(ctx context.Context, instance string, snapshot *models.BatchSnapshot) error {
	c.saveCount++
	return nil
}

type fixture struct {
	dispatcher Dispatcher
	store      *batch.Store
	repo       *countingRepo
	notifier   *fakeNotifier
	backend    *fakeBackend
}

func newFixture(t *testing.T, catalogData map[string]*models.ProductMetadata, backend *fakeBackend) *fixture {
	t.Helper()

	repo := &countingRepo{}
	store := batch.NewStore(repo, &config.Config{Instance: "test"})
	notifier := &fakeNotifier{}
	registry := backends.NewRegistry()
	require.NoError(t, registry.Register(models.BackendGrocy, backend))

	d := NewDispatcher(
		&fakeCatalog{data: catalogData},
		classifier.New(models.BackendGrocy),
		registry,
		store,
		notifier,
	)
	return &fixture{dispatcher: d, store: store, repo: repo, notifier: notifier, backend: backend}
}

func TestScanEmptyBarcode(t *testing.T) {
	f := newFixture(t, nil, &fakeBackend{name: "Grocy"})

	_, err := f.dispatcher.Scan(context.Background(), models.ScanEvent{Barcode: "   "})

	assert.ErrorIs(t, err, models.ErrEmptyBarcode)
	assert.Empty(t, f.store.Items(), "no batch mutation on validation error")
	assert.Zero(t, f.notifier.notified)
}

func TestScanUnknownBackend(t *testing.T) {
	f := newFixture(t, nil, &fakeBackend{name: "Grocy"})

	_, err := f.dispatcher.Scan(context.Background(), models.ScanEvent{
		Barcode: "123",
		Backend: "warehouse-9",
	})

	assert.ErrorIs(t, err, models.ErrUnknownBackend)
	assert.Empty(t, f.store.Items())
}

func TestScanAddsItemWithLookupData(t *testing.T) {
	catalogData := map[string]*models.ProductMetadata{
		"123": {Barcode: "123", Title: "Oat Milk", Category: "Dairy"},
	}
	backend := &fakeBackend{
		name:   "Grocy",
		exists: map[string]bool{"123": true},
		info:   map[string]*models.ItemInfo{"123": {ID: "7", Name: "Oat Milk"}},
	}
	f := newFixture(t, catalogData, backend)

	item, err := f.dispatcher.Scan(context.Background(), models.ScanEvent{Barcode: "123", Quantity: 3})

	require.NoError(t, err)
	assert.Equal(t, models.BackendGrocy, item.Backend)
	assert.True(t, item.Exists)
	assert.Equal(t, 3, item.Quantity, "scan overwrites quantity to the requested value")
	require.NotNil(t, item.ItemInfo)
	assert.Equal(t, "7", item.ItemInfo.ID)
	assert.Equal(t, 1, f.repo.saveCount)
	assert.Equal(t, 1, f.notifier.notified)
}

func TestScanUnknownBarcodeUsesMinimalData(t *testing.T) {
	f := newFixture(t, nil, &fakeBackend{name: "Grocy"})

	item, err := f.dispatcher.Scan(context.Background(), models.ScanEvent{Barcode: "999"})

	require.NoError(t, err)
	assert.Equal(t, "Unknown Item", item.UPCData.Title)
	assert.Equal(t, 1, item.Quantity)
	assert.False(t, item.Exists)
}

func TestScanTwiceMergesQuantity(t *testing.T) {
	f := newFixture(t, nil, &fakeBackend{name: "Grocy"})

	_, err := f.dispatcher.Scan(context.Background(), models.ScanEvent{Barcode: "123"})
	require.NoError(t, err)
	_, err = f.dispatcher.Scan(context.Background(), models.ScanEvent{Barcode: "123", Quantity: 2})
	require.NoError(t, err)

	items := f.store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestProcessBatchMixedResults(t *testing.T) {
	backend := &fakeBackend{
		name:     "Grocy",
		exists:   map[string]bool{"a": true, "b": true, "c": true},
		addOK:    true,
		createOK: true,
	}
	f := newFixture(t, nil, backend)

	f.store.AddItem("a", nil, models.BackendGrocy, true, nil)
	f.store.AddItem("b", nil, models.BackendGrocy, true, nil)
	f.store.AddItem("c", nil, models.BackendGrocy, false, nil)
	f.repo.saveCount = 0

	results, err := f.dispatcher.ProcessBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var successes, failures int
	for _, r := range results {
		if r.Success {
			successes++
		} else {
			failures++
		}
	}
	assert.Equal(t, 3, successes)
	assert.Equal(t, 0, failures)
	assert.Equal(t, 1, f.repo.saveCount, "batch persisted once after the full pass")
	assert.Equal(t, 1, f.notifier.notified)
}

func TestProcessBatchOneFailureDoesNotShortCircuit(t *testing.T) {
	backend := &fakeBackend{
		name:     "Grocy",
		exists:   map[string]bool{"a": true, "b": true},
		addOK:    false, // every booking fails
		createOK: true,
	}
	f := newFixture(t, nil, backend)

	f.store.AddItem("a", nil, models.BackendGrocy, true, nil)  // booking fails
	f.store.AddItem("b", nil, models.BackendGrocy, false, nil) // created fine
	f.store.AddItem("c", nil, models.BackendGrocy, false, nil) // created fine
	f.repo.saveCount = 0

	results, err := f.dispatcher.ProcessBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var successes, failures int
	for _, r := range results {
		if r.Success {
			successes++
			assert.Equal(t, models.ActionCreatedItem, r.Action)
		} else {
			failures++
			assert.Equal(t, "a", r.Barcode)
			assert.Equal(t, "Failed to add quantity", r.Error)
		}
	}
	assert.Equal(t, 2, successes)
	assert.Equal(t, 1, failures)

	itemA, _ := f.store.Item("a")
	assert.Equal(t, models.StatusError, itemA.Status)
	assert.Equal(t, "Failed to add quantity", itemA.ErrorMessage)
	itemB, _ := f.store.Item("b")
	assert.Equal(t, models.StatusProcessed, itemB.Status)
	itemC, _ := f.store.Item("c")
	assert.Equal(t, models.StatusProcessed, itemC.Status)

	assert.Equal(t, 1, f.repo.saveCount, "batch persisted once despite the failure")
}

func TestProcessBatchMissingBackendMarksItemError(t *testing.T) {
	f := newFixture(t, nil, &fakeBackend{name: "Grocy", createOK: true})

	f.store.AddItem("a", nil, "warehouse-9", false, nil)
	f.store.AddItem("b", nil, models.BackendGrocy, false, nil)

	results, err := f.dispatcher.ProcessBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "warehouse-9")
	assert.True(t, results[1].Success, "remaining items still processed")

	itemA, _ := f.store.Item("a")
	assert.Equal(t, models.StatusError, itemA.Status)
}

func TestProcessBatchAppliesOverrides(t *testing.T) {
	backend := &fakeBackend{name: "Grocy", createOK: true}
	f := newFixture(t, nil, backend)

	f.store.AddItem("a", &models.ProductMetadata{Title: "Widget"}, models.BackendGrocy, false, nil)

	quantity := 7
	results, err := f.dispatcher.ProcessBatch(context.Background(), map[string]models.ItemOverride{
		"a": {
			Quantity:            &quantity,
			PendingConfirmation: map[string]interface{}{"location_id": 4},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	require.Len(t, backend.createCalls, 1)
	created := backend.createCalls[0]
	assert.Equal(t, 7, created.Quantity)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 4, created.Fields["location_id"])
}

func TestProcessBatchEmpty(t *testing.T) {
	f := newFixture(t, nil, &fakeBackend{name: "Grocy"})

	results, err := f.dispatcher.ProcessBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, f.notifier.notified, "nothing to persist or announce")
}

func TestClearBatch(t *testing.T) {
	f := newFixture(t, nil, &fakeBackend{name: "Grocy"})
	f.store.AddItem("a", nil, models.BackendGrocy, false, nil)

	require.NoError(t, f.dispatcher.ClearBatch(context.Background()))
	require.NoError(t, f.dispatcher.ClearBatch(context.Background()), "clear is idempotent")

	assert.Empty(t, f.store.Items())
	assert.Equal(t, models.ModeBatch, f.store.Mode())
	assert.Equal(t, 2, f.notifier.notified)
	assert.Empty(t, f.notifier.last.Items)
}
