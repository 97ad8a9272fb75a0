package models

// ScanEvent is a scan command as it arrives from the HTTP API or the kafka
// intake topic.
type ScanEvent struct {
	Barcode string `json:"barcode" validate:"required"`
	// Backend is a manual routing override; empty means auto-detect.
	Backend  string `json:"backend,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// ItemOverride adjusts a single batch item just before it is committed.
type ItemOverride struct {
	Quantity            *int                   `json:"quantity,omitempty"`
	PendingConfirmation map[string]interface{} `json:"pending_confirmation,omitempty"`
}

// Actions recorded on a successful per-item commit.
const (
	ActionAddedQuantity = "added_quantity"
	ActionCreatedItem   = "created_item"
)

// ProcessResult is the per-item outcome of a batch commit.
type ProcessResult struct {
	Barcode string `json:"barcode"`
	Success bool   `json:"success"`
	Action  string `json:"action,omitempty"`
	Error   string `json:"error,omitempty"`
}
