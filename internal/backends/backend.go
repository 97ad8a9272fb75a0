package backends

import (
	"context"

	"github.com/homeinv/barcode-router/internal/models"
)

// StockOptions carries the optional fields of a stock-increase booking.
type StockOptions struct {
	BestBeforeDate     string
	PurchasedDate      string
	Price              float64
	ShoppingLocationID int
}

// ItemData is the creation payload for a record the backend does not know yet.
type ItemData struct {
	Barcode     string
	Name        string
	Description string
	// Quantity > 0 books initial stock after the record is created.
	Quantity int
	// Fields holds backend-specific extras confirmed by the user.
	Fields map[string]interface{}
}

// FieldDescriptor describes one input of the item-creation form.
type FieldDescriptor struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Backend is one concrete inventory system. Transport failures never escape:
// each operation converts them to its documented false/nil return and logs
// the cause.
type Backend interface {
	// Name is the stable human-readable label.
	Name() string

	// CheckItemExists reports whether the backend holds a record for the
	// barcode. Lookup errors count as false.
	CheckItemExists(ctx context.Context, barcode string) bool

	// GetItemInfo fetches normalized detail for an existing record, nil if
	// absent or on error.
	GetItemInfo(ctx context.Context, barcode string) *models.ItemInfo

	// AddQuantity books a stock increase for an existing record. False when
	// the barcode is unknown to the backend or the booking fails.
	AddQuantity(ctx context.Context, barcode string, quantity int, opts *StockOptions) bool

	// CreateItem creates a new record, links the barcode when present, and
	// books initial stock when Quantity > 0. True iff the base record was
	// created; link and stock sub-steps do not roll it back.
	CreateItem(ctx context.Context, item ItemData) bool

	// RequiredFields is the static manifest of the item-creation form.
	RequiredFields() []FieldDescriptor

	// Ping probes connectivity, used to validate configuration at startup.
	Ping(ctx context.Context) error

	// Close releases the backend's connection resources.
	Close() error
}

// BackendError annotates a transport failure with the backend and operation
// it happened in. It stays inside the adapter boundary and only surfaces in
// logs.
type BackendError struct {
	Backend   string
	Operation string
	Message   string
	Cause     error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

func NewBackendError(backend, operation, message string, cause error) *BackendError {
	return &BackendError{
		Backend:   backend,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}
