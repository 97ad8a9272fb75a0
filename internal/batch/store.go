package batch

import (
	"context"
	"errors"
	"sync"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/config"
	"github.com/homeinv/barcode-router/internal/models"
	"github.com/homeinv/barcode-router/internal/repo/mongodb"
)

// ItemUpdate shallow-merges the set fields into a stored batch item.
type ItemUpdate struct {
	Quantity            *int
	Status              *models.ItemStatus
	ErrorMessage        *string
	PendingConfirmation map[string]interface{}
}

// Store is the mutable collection of pending scan results, keyed by barcode
// in first-scan order. The whole batch is persisted on every mutating
// operation; callers serialize scan/process/clear flows, the internal mutex
// only keeps the snapshot itself consistent.
type Store struct {
	repo     mongodb.BatchRepository
	instance string

	mu    sync.Mutex
	items []*models.BatchItem
	mode  models.BatchMode
}

func NewStore(repo mongodb.BatchRepository, cfg *config.Config) *Store {
	return &Store{
		repo:     repo,
		instance: cfg.Instance,
		mode:     models.ModeBatch,
	}
}

// Load replaces in-memory state with the persisted snapshot. A missing or
// unreadable snapshot degrades to an empty batch.
func (s *Store) Load(ctx context.Context) {
	snapshot, err := s.repo.Load(ctx, s.instance)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Errorw(ctx, "Error loading batch, starting empty", "error", err)
		}
		s.mu.Lock()
		s.items = nil
		s.mode = models.ModeBatch
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.items = make([]*models.BatchItem, 0, len(snapshot.Items))
	for i := range snapshot.Items {
		item := snapshot.Items[i]
		s.items = append(s.items, &item)
	}
	s.mode = snapshot.Mode
	if s.mode == "" {
		s.mode = models.ModeBatch
	}
	s.mu.Unlock()

	log.Infof(ctx, "Loaded batch with %d items", len(snapshot.Items))
}

// Save persists the current snapshot. In-memory state stays authoritative
// when the write fails; the caller decides whether to log or surface it.
func (s *Store) Save(ctx context.Context) error {
	snapshot := s.Snapshot()
	return s.repo.Save(ctx, s.instance, &snapshot)
}

// AddItem inserts a new item or merges into an existing one: a re-scan
// increments quantity, refreshes metadata/backend/exists/item-info and
// resets the status to pending.
func (s *Store) AddItem(barcode string, upcData *models.ProductMetadata, backend string, exists bool, itemInfo *models.ItemInfo) models.BatchItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Barcode != barcode {
			continue
		}
		item.Quantity++
		if upcData != nil {
			item.UPCData = *upcData
		}
		item.Backend = backend
		item.Exists = exists
		item.ItemInfo = itemInfo
		item.Status = models.StatusPending
		return *item
	}

	item := &models.BatchItem{
		Barcode:  barcode,
		Backend:  backend,
		Exists:   exists,
		Quantity: models.DefaultQuantity,
		ItemInfo: itemInfo,
		Status:   models.StatusPending,
	}
	if upcData != nil {
		item.UPCData = *upcData
	}
	if !exists {
		item.PendingConfirmation = map[string]interface{}{}
	}
	s.items = append(s.items, item)
	return *item
}

// Items returns a snapshot of all items in insertion order.
func (s *Store) Items() []models.BatchItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.BatchItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, *item)
	}
	return items
}

// Item returns a copy of the item stored under barcode.
func (s *Store) Item(barcode string) (models.BatchItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Barcode == barcode {
			return *item, true
		}
	}
	return models.BatchItem{}, false
}

// UpdateItem applies the update to the stored item, false if barcode is not
// in the batch.
func (s *Store) UpdateItem(barcode string, update ItemUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Barcode != barcode {
			continue
		}
		if update.Quantity != nil {
			item.Quantity = *update.Quantity
		}
		if update.Status != nil {
			item.Status = *update.Status
		}
		if update.ErrorMessage != nil {
			item.ErrorMessage = *update.ErrorMessage
		}
		if update.PendingConfirmation != nil {
			item.PendingConfirmation = update.PendingConfirmation
		}
		return true
	}
	return false
}

func (s *Store) RemoveItem(barcode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.Barcode == barcode {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear resets to an empty batch in batch mode.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.mode = models.ModeBatch
}

func (s *Store) SetMode(mode models.BatchMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

func (s *Store) Mode() models.BatchMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Snapshot returns the persisted-layout view of the batch.
func (s *Store) Snapshot() models.BatchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.BatchItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, *item)
	}
	return models.BatchSnapshot{
		Version: models.SnapshotVersion,
		Items:   items,
		Mode:    s.mode,
	}
}
