package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/homeinv/barcode-router/internal/config"
	"github.com/homeinv/barcode-router/internal/models"
)

// lookupItem mirrors one entry of the catalog's `items` list.
type lookupItem struct {
	Title       string        `json:"title"`
	Brand       string        `json:"brand"`
	Model       string        `json:"model"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Images      []string      `json:"images"`
	Offers      []lookupOffer `json:"offers"`
}

type lookupOffer struct {
	Merchant string  `json:"merchant"`
	Price    float64 `json:"price"`
	Link     string  `json:"link"`
}

type lookupResponse struct {
	Items []lookupItem `json:"items"`
}

// Client looks up product metadata by barcode from the external catalog.
type Client interface {
	Lookup(ctx context.Context, barcode string) (*models.ProductMetadata, error)
}

type client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config) Client {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.Catalog.Timeout,
		},
		baseURL: cfg.Catalog.BaseURL,
	}
}

// Lookup returns models.ErrNotFound when the catalog has no entry for the
// barcode. Only the first result entry is used.
func (c *client) Lookup(ctx context.Context, barcode string) (*models.ProductMetadata, error) {
	reqURL := fmt.Sprintf("%s?upc=%s", c.baseURL, url.QueryEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var lookupResp lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(lookupResp.Items) == 0 {
		return nil, models.ErrNotFound
	}

	item := lookupResp.Items[0]
	meta := &models.ProductMetadata{
		Barcode:     barcode,
		Title:       item.Title,
		Brand:       item.Brand,
		Model:       item.Model,
		Category:    item.Category,
		Description: item.Description,
		Images:      item.Images,
	}
	for _, offer := range item.Offers {
		meta.Offers = append(meta.Offers, models.Offer{
			Merchant: offer.Merchant,
			Price:    offer.Price,
			Link:     offer.Link,
		})
	}
	return meta, nil
}
