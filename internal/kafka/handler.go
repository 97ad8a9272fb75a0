package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/models"
	"github.com/homeinv/barcode-router/internal/usecase"
)

// MessageHandler consumes one raw scan event from the intake topic.
type MessageHandler interface {
	Handle(ctx context.Context, payload []byte) error
}

type scanEventHandler struct {
	dispatcher usecase.Dispatcher
}

func NewScanEventHandler(dispatcher usecase.Dispatcher) MessageHandler {
	return &scanEventHandler{dispatcher: dispatcher}
}

func (h *scanEventHandler) Handle(ctx context.Context, payload []byte) error {
	var event models.ScanEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode scan event: %w", err)
	}

	item, err := h.dispatcher.Scan(ctx, event)
	if err != nil {
		// Validation failures are final: the event can never succeed, so it
		// is logged and committed rather than redelivered.
		if errors.Is(err, models.ErrEmptyBarcode) || errors.Is(err, models.ErrUnknownBackend) {
			log.Warnw(ctx, "Dropping invalid scan event", "error", err)
			return nil
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	log.Infow(ctx, "Scan event processed",
		"barcode", item.Barcode,
		"backend", item.Backend,
		"quantity", item.Quantity,
	)
	return nil
}
