package usecase

import (
	"context"
	"fmt"
	"strings"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/backends"
	"github.com/homeinv/barcode-router/internal/batch"
	"github.com/homeinv/barcode-router/internal/catalog"
	"github.com/homeinv/barcode-router/internal/classifier"
	"github.com/homeinv/barcode-router/internal/models"
)

type dispatcher struct {
	catalog    catalog.Service
	classifier *classifier.Classifier
	registry   *backends.Registry
	store      *batch.Store
	notifier   Notifier
}

func NewDispatcher(
	catalogSvc catalog.Service,
	cls *classifier.Classifier,
	registry *backends.Registry,
	store *batch.Store,
	notifier Notifier,
) Dispatcher {
	return &dispatcher{
		catalog:    catalogSvc,
		classifier: cls,
		registry:   registry,
		store:      store,
		notifier:   notifier,
	}
}

func (d *dispatcher) Scan(ctx context.Context, event models.ScanEvent) (*models.BatchItem, error) {
	barcode := strings.TrimSpace(event.Barcode)
	if barcode == "" {
		return nil, models.ErrEmptyBarcode
	}
	quantity := event.Quantity
	if quantity <= 0 {
		quantity = models.DefaultQuantity
	}

	log.Infof(ctx, "Scanning barcode %s", barcode)

	upcData := d.catalog.Lookup(ctx, barcode, true)
	if upcData == nil {
		log.Warnw(ctx, "Could not look up barcode, using minimal data", "barcode", barcode)
		upcData = &models.ProductMetadata{
			Barcode: barcode,
			Title:   "Unknown Item",
		}
	}

	backendID := d.classifier.Classify(upcData, event.Backend)
	log.Infof(ctx, "Detected backend %s for barcode %s", backendID, barcode)

	backend, ok := d.registry.Get(backendID)
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", backendID, models.ErrUnknownBackend)
	}

	exists := backend.CheckItemExists(ctx, barcode)
	var itemInfo *models.ItemInfo
	if exists {
		itemInfo = backend.GetItemInfo(ctx, barcode)
	}

	item := d.store.AddItem(barcode, upcData, backendID, exists, itemInfo)
	d.store.UpdateItem(barcode, batch.ItemUpdate{Quantity: &quantity})
	item.Quantity = quantity

	if err := d.store.Save(ctx); err != nil {
		log.Errorw(ctx, "Error saving batch", "error", err)
	}
	d.notifier.NotifyBatchUpdated(d.store.Snapshot())

	log.Infow(ctx, "Added barcode to batch",
		"barcode", barcode,
		"backend", backendID,
		"exists", exists,
		"quantity", quantity,
	)
	return &item, nil
}

func (d *dispatcher) ProcessBatch(ctx context.Context, overrides map[string]models.ItemOverride) ([]models.ProcessResult, error) {
	items := d.store.Items()
	if len(items) == 0 {
		log.Warnw(ctx, "No items in batch to process")
		return nil, nil
	}

	log.Infof(ctx, "Processing batch with %d items", len(items))

	results := make([]models.ProcessResult, 0, len(items))
	for _, item := range items {
		if override, ok := overrides[item.Barcode]; ok {
			if override.Quantity != nil {
				item.Quantity = *override.Quantity
			}
			if override.PendingConfirmation != nil {
				item.PendingConfirmation = override.PendingConfirmation
			}
			d.store.UpdateItem(item.Barcode, batch.ItemUpdate{
				Quantity:            override.Quantity,
				PendingConfirmation: override.PendingConfirmation,
			})
		}

		results = append(results, d.processItem(ctx, item))
	}

	if err := d.store.Save(ctx); err != nil {
		log.Errorw(ctx, "Error saving batch", "error", err)
	}
	d.notifier.NotifyBatchUpdated(d.store.Snapshot())

	log.Infof(ctx, "Batch processing complete: %d items processed", len(results))
	return results, nil
}

func (d *dispatcher) processItem(ctx context.Context, item models.BatchItem) models.ProcessResult {
	backend, ok := d.registry.Get(item.Backend)
	if !ok {
		log.Errorw(ctx, "Backend not available for item", "backend", item.Backend, "barcode", item.Barcode)
		return d.failItem(item.Barcode, fmt.Sprintf("Backend %s not available", item.Backend))
	}

	if item.Exists {
		if !backend.AddQuantity(ctx, item.Barcode, item.Quantity, nil) {
			return d.failItem(item.Barcode, "Failed to add quantity")
		}
		d.markProcessed(item.Barcode)
		log.Infof(ctx, "Added quantity %d to item %s", item.Quantity, item.Barcode)
		return models.ProcessResult{Barcode: item.Barcode, Success: true, Action: models.ActionAddedQuantity}
	}

	name := item.UPCData.Title
	if name == "" {
		name = "Unknown Item"
	}
	itemData := backends.ItemData{
		Barcode:     item.Barcode,
		Name:        name,
		Description: item.UPCData.Description,
		Quantity:    item.Quantity,
		Fields:      item.PendingConfirmation,
	}

	if !backend.CreateItem(ctx, itemData) {
		return d.failItem(item.Barcode, "Failed to create item")
	}
	d.markProcessed(item.Barcode)
	log.Infof(ctx, "Created new item %s", item.Barcode)
	return models.ProcessResult{Barcode: item.Barcode, Success: true, Action: models.ActionCreatedItem}
}

func (d *dispatcher) markProcessed(barcode string) {
	status := models.StatusProcessed
	d.store.UpdateItem(barcode, batch.ItemUpdate{Status: &status})
}

func (d *dispatcher) failItem(barcode, message string) models.ProcessResult {
	status := models.StatusError
	d.store.UpdateItem(barcode, batch.ItemUpdate{
		Status:       &status,
		ErrorMessage: &message,
	})
	return models.ProcessResult{Barcode: barcode, Success: false, Error: message}
}

func (d *dispatcher) ClearBatch(ctx context.Context) error {
	d.store.Clear()
	if err := d.store.Save(ctx); err != nil {
		log.Errorw(ctx, "Error saving batch", "error", err)
	}
	d.notifier.NotifyBatchUpdated(d.store.Snapshot())
	log.Infof(ctx, "Batch cleared")
	return nil
}
