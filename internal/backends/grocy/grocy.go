package grocy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/backends"
	"github.com/homeinv/barcode-router/internal/config"
	"github.com/homeinv/barcode-router/internal/models"
)

const backendID = "grocy"

// Ensure the adapter satisfies the backend contract.
var _ backends.Backend = (*Backend)(nil)

// Backend talks to a Grocy instance over its JSON REST API using a
// header-based API key.
type Backend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(cfg config.GrocyConfig) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type product struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	QuUnit      struct {
		Name string `json:"name"`
	} `json:"qu_unit_purchase"`
}

// request performs one API call. A 404 yields (nil, nil), the documented
// not-found signal. Any other non-2xx status is a transport error for the
// caller to absorb.
func (b *Backend) request(ctx context.Context, method, endpoint string, payload interface{}) (json.RawMessage, error) {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	url := b.baseURL + "/api" + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("GROCY-API-KEY", b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, backends.NewBackendError(backendID, method+" "+endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, backends.NewBackendError(backendID, method+" "+endpoint,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return nil, nil
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, backends.NewBackendError(backendID, method+" "+endpoint, "failed to decode response", err)
	}
	return raw, nil
}

func (b *Backend) productByBarcode(ctx context.Context, barcode string) (*product, error) {
	raw, err := b.request(ctx, http.MethodGet, "/objects/products/by-barcode/"+barcode, nil)
	if err != nil || raw == nil {
		return nil, err
	}
	var p product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, backends.NewBackendError(backendID, "productByBarcode", "failed to decode product", err)
	}
	return &p, nil
}

func (b *Backend) Name() string {
	return "Grocy"
}

func (b *Backend) CheckItemExists(ctx context.Context, barcode string) bool {
	p, err := b.request(ctx, http.MethodGet, "/objects/products/by-barcode/"+barcode, nil)
	if err != nil {
		log.Errorw(ctx, "Error checking item existence", "barcode", barcode, "error", err)
		return false
	}
	return p != nil
}

func (b *Backend) GetItemInfo(ctx context.Context, barcode string) *models.ItemInfo {
	p, err := b.productByBarcode(ctx, barcode)
	if err != nil {
		log.Errorw(ctx, "Error getting item info", "barcode", barcode, "error", err)
		return nil
	}
	if p == nil {
		return nil
	}

	info := &models.ItemInfo{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Barcode:     barcode,
	}

	raw, err := b.request(ctx, http.MethodGet, "/objects/products/"+p.ID.String(), nil)
	if err != nil {
		log.Errorw(ctx, "Error getting product details", "barcode", barcode, "error", err)
		return info
	}
	if raw != nil {
		var details product
		if err := json.Unmarshal(raw, &details); err == nil {
			info.Name = details.Name
			info.Description = details.Description
			info.Unit = details.QuUnit.Name
		}
	}
	return info
}

func (b *Backend) AddQuantity(ctx context.Context, barcode string, quantity int, opts *backends.StockOptions) bool {
	p, err := b.productByBarcode(ctx, barcode)
	if err != nil {
		log.Errorw(ctx, "Error adding quantity", "barcode", barcode, "error", err)
		return false
	}
	if p == nil {
		log.Warnw(ctx, "Product not found for barcode", "barcode", barcode)
		return false
	}

	booking := map[string]interface{}{
		"amount":     quantity,
		"product_id": p.ID,
	}
	if opts != nil {
		if opts.BestBeforeDate != "" {
			booking["best_before_date"] = opts.BestBeforeDate
		}
		if opts.PurchasedDate != "" {
			booking["purchased_date"] = opts.PurchasedDate
		}
		if opts.Price > 0 {
			booking["price"] = opts.Price
		}
		if opts.ShoppingLocationID > 0 {
			booking["shopping_location_id"] = opts.ShoppingLocationID
		}
	}

	result, err := b.request(ctx, http.MethodPost, "/stock/bookin", booking)
	if err != nil {
		log.Errorw(ctx, "Error booking stock", "barcode", barcode, "error", err)
		return false
	}
	return result != nil
}

// creationFields are the backend-specific extras accepted on item creation.
var creationFields = []string{
	"qu_id_purchase",
	"qu_id_stock",
	"qu_factor_purchase_to_stock",
	"location_id",
	"shopping_location_id",
}

func (b *Backend) CreateItem(ctx context.Context, item backends.ItemData) bool {
	productData := map[string]interface{}{
		"name":        item.Name,
		"description": item.Description,
	}
	for _, field := range creationFields {
		if value, ok := item.Fields[field]; ok {
			productData[field] = value
		}
	}

	raw, err := b.request(ctx, http.MethodPost, "/objects/products", productData)
	if err != nil {
		log.Errorw(ctx, "Error creating item", "name", item.Name, "error", err)
		return false
	}
	if raw == nil {
		return false
	}

	var created struct {
		ID json.Number `json:"created_object_id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.ID.String() == "" {
		log.Errorw(ctx, "Created product response missing id", "name", item.Name, "error", err)
		return false
	}
	productID := created.ID

	// The record now exists; failures below are logged, not rolled back.
	if item.Barcode != "" {
		barcodeData := map[string]interface{}{
			"product_id": productID,
			"barcode":    item.Barcode,
		}
		if _, err := b.request(ctx, http.MethodPost, "/objects/product_barcodes", barcodeData); err != nil {
			log.Errorw(ctx, "Error linking barcode to product", "barcode", item.Barcode, "error", err)
		}
	}

	if item.Quantity > 0 && item.Barcode != "" {
		opts := &backends.StockOptions{}
		if v, ok := item.Fields["best_before_date"].(string); ok {
			opts.BestBeforeDate = v
		}
		if v, ok := item.Fields["purchased_date"].(string); ok {
			opts.PurchasedDate = v
		}
		if !b.AddQuantity(ctx, item.Barcode, item.Quantity, opts) {
			log.Warnw(ctx, "Failed to book initial stock for new item", "barcode", item.Barcode)
		}
	}

	return true
}

func (b *Backend) RequiredFields() []backends.FieldDescriptor {
	return []backends.FieldDescriptor{
		{Name: "name", Label: "Product Name", Type: "text", Required: true},
		{Name: "description", Label: "Description", Type: "text", Required: false},
		{Name: "quantity", Label: "Initial Quantity", Type: "number", Required: false},
		{Name: "best_before_date", Label: "Best Before Date", Type: "date", Required: false},
		{Name: "purchased_date", Label: "Purchase Date", Type: "date", Required: false},
	}
}

// Ping probes the system-info endpoint to validate the configured URL and
// API key.
func (b *Backend) Ping(ctx context.Context) error {
	raw, err := b.request(ctx, http.MethodGet, "/system/info", nil)
	if err != nil {
		return err
	}
	if raw == nil {
		return backends.NewBackendError(backendID, "Ping", "system info not available", nil)
	}
	return nil
}

func (b *Backend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}
