package models

import "time"

// Backend identifiers. Each id maps to one inventory system family.
const (
	BackendGrocy   = "grocy"   // consumables
	BackendHomebox = "homebox" // durable goods
	BackendLibrary = "library" // books and media
)

const DefaultQuantity = 1

type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusConfirmed ItemStatus = "confirmed"
	StatusProcessed ItemStatus = "processed"
	StatusError     ItemStatus = "error"
)

type BatchMode string

const (
	ModeBatch  BatchMode = "batch"
	ModeSingle BatchMode = "single"
)

// ProductMetadata is the normalized result of a catalog lookup. Immutable
// once fetched; absent fields stay zero-valued.
type ProductMetadata struct {
	Barcode     string   `bson:"barcode" json:"barcode"`
	Title       string   `bson:"title" json:"title"`
	Brand       string   `bson:"brand" json:"brand"`
	Model       string   `bson:"model" json:"model"`
	Category    string   `bson:"category" json:"category"`
	Description string   `bson:"description" json:"description"`
	Images      []string `bson:"images" json:"images"`
	Offers      []Offer  `bson:"offers" json:"offers"`
}

type Offer struct {
	Merchant string  `bson:"merchant" json:"merchant"`
	Price    float64 `bson:"price" json:"price"`
	Link     string  `bson:"link" json:"link"`
}

// ItemInfo is the backend-reported detail for an item that already exists.
type ItemInfo struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	Barcode     string `bson:"barcode" json:"barcode"`
	Unit        string `bson:"unit" json:"unit"`
}

// BatchItem is one scanned barcode awaiting commit. Barcode is unique within
// a batch; re-scanning merges into the existing entry.
type BatchItem struct {
	Barcode  string          `bson:"barcode" json:"barcode"`
	UPCData  ProductMetadata `bson:"upc_data" json:"upc_data"`
	Backend  string          `bson:"backend" json:"backend"`
	Exists   bool            `bson:"exists" json:"exists"`
	Quantity int             `bson:"quantity" json:"quantity"`
	// PendingConfirmation holds user-supplied fields needed to create a new
	// record. Nil when the backend already has the item.
	PendingConfirmation map[string]interface{} `bson:"pending_confirmation,omitempty" json:"pending_confirmation,omitempty"`
	ItemInfo            *ItemInfo              `bson:"item_info,omitempty" json:"item_info,omitempty"`
	Status              ItemStatus             `bson:"status" json:"status"`
	ErrorMessage        string                 `bson:"error_message,omitempty" json:"error_message,omitempty"`
}

// BatchSnapshot is the persisted batch layout: one versioned record holding
// every pending item in first-scan order plus the scanning mode.
type BatchSnapshot struct {
	Version   int         `bson:"version" json:"version"`
	Items     []BatchItem `bson:"items" json:"items"`
	Mode      BatchMode   `bson:"mode" json:"mode"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

const SnapshotVersion = 1
