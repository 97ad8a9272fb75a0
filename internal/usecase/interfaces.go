package usecase

import (
	"context"

	"github.com/homeinv/barcode-router/internal/models"
)

// Dispatcher orchestrates the scan-to-batch and batch-to-backend flows.
type Dispatcher interface {
	// Scan looks up, classifies and merges one barcode into the batch.
	Scan(ctx context.Context, event models.ScanEvent) (*models.BatchItem, error)

	// ProcessBatch commits every batch item to its backend, continuing past
	// individual failures.
	ProcessBatch(ctx context.Context, overrides map[string]models.ItemOverride) ([]models.ProcessResult, error)

	// ClearBatch empties the batch.
	ClearBatch(ctx context.Context) error
}

// Notifier is signalled after every mutating operation so observers can
// refresh their view of the batch.
type Notifier interface {
	NotifyBatchUpdated(snapshot models.BatchSnapshot)
}
