package classifier

import (
	"sort"
	"strings"

	"github.com/homeinv/barcode-router/internal/models"
)

// categoryBackends maps well-known catalog categories to the backend that
// owns that kind of item.
var categoryBackends = map[string]string{
	// consumables
	"Food":              models.BackendGrocy,
	"Beverages":         models.BackendGrocy,
	"Snacks":            models.BackendGrocy,
	"Dairy":             models.BackendGrocy,
	"Meat":              models.BackendGrocy,
	"Produce":           models.BackendGrocy,
	"Frozen":            models.BackendGrocy,
	"Bakery":            models.BackendGrocy,
	"Candy":             models.BackendGrocy,
	"Condiments":        models.BackendGrocy,
	"Spices":            models.BackendGrocy,
	"Canned Goods":      models.BackendGrocy,
	"Pasta":             models.BackendGrocy,
	"Cereal":            models.BackendGrocy,
	"Baby Food":         models.BackendGrocy,
	"Pet Food":          models.BackendGrocy,
	"Cleaning Supplies": models.BackendGrocy,
	"Personal Care":     models.BackendGrocy,
	"Health & Beauty":   models.BackendGrocy,
	"Household":         models.BackendGrocy,
	// durable goods
	"Tools":            models.BackendHomebox,
	"Hardware":         models.BackendHomebox,
	"Electronics":      models.BackendHomebox,
	"Home Improvement": models.BackendHomebox,
	"Automotive":       models.BackendHomebox,
	"Office Supplies":  models.BackendHomebox,
	"Stationery":       models.BackendHomebox,
	"Kitchenware":      models.BackendHomebox,
	"Home Decor":       models.BackendHomebox,
	"Furniture":        models.BackendHomebox,
	"Appliances":       models.BackendHomebox,
	// media
	"Books":       models.BackendLibrary,
	"Media":       models.BackendLibrary,
	"Movies":      models.BackendLibrary,
	"Music":       models.BackendLibrary,
	"Video Games": models.BackendLibrary,
	"Software":    models.BackendLibrary,
}

// categoryKeys is sorted so substring matching is deterministic regardless
// of map iteration order.
var categoryKeys = sortedCategoryKeys()

func sortedCategoryKeys() []string {
	keys := make([]string, 0, len(categoryBackends))
	for key := range categoryBackends {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var mediaKeywords = []string{"book", "novel", "dvd", "cd", "blu-ray", "game", "software"}

var hardwareKeywords = []string{"tool", "screwdriver", "wrench", "hammer", "screw", "bolt", "hardware"}

// Classifier decides which backend a scanned product belongs to. It is pure:
// the same metadata and override always yield the same backend id.
type Classifier struct {
	defaultBackend string
}

func New(defaultBackend string) *Classifier {
	if defaultBackend == "" {
		defaultBackend = models.BackendGrocy
	}
	return &Classifier{defaultBackend: defaultBackend}
}

// Classify resolves a backend id for the product. A manual override is
// returned verbatim without validation; the dispatcher checks the registry.
func (c *Classifier) Classify(data *models.ProductMetadata, override string) string {
	if override != "" {
		return override
	}
	if data == nil {
		return c.defaultBackend
	}

	if data.Category != "" {
		if backend, ok := categoryBackends[data.Category]; ok {
			return backend
		}

		categoryLower := strings.ToLower(data.Category)
		for _, key := range categoryKeys {
			keyLower := strings.ToLower(key)
			if strings.Contains(categoryLower, keyLower) || strings.Contains(keyLower, categoryLower) {
				return categoryBackends[key]
			}
		}
	}

	text := strings.ToLower(data.Title) + " " + strings.ToLower(data.Description)
	for _, keyword := range mediaKeywords {
		if strings.Contains(text, keyword) {
			return models.BackendLibrary
		}
	}
	for _, keyword := range hardwareKeywords {
		if strings.Contains(text, keyword) {
			return models.BackendHomebox
		}
	}

	return c.defaultBackend
}

// DefaultBackend reports the fallback backend id.
func (c *Classifier) DefaultBackend() string {
	return c.defaultBackend
}

// AvailableBackends lists the fixed set of backend ids the classifier can emit.
func AvailableBackends() []string {
	return []string{models.BackendGrocy, models.BackendHomebox, models.BackendLibrary}
}
