package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/homeinv/barcode-router/internal/backends"
	"github.com/homeinv/barcode-router/internal/batch"
	"github.com/homeinv/barcode-router/internal/models"
	"github.com/homeinv/barcode-router/internal/socket"
	"github.com/homeinv/barcode-router/internal/usecase"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	dispatcher usecase.Dispatcher
	store      *batch.Store
	registry   *backends.Registry
	hub        *socket.Hub
	upgrader   websocket.Upgrader
}

func NewHandler(
	dispatcher usecase.Dispatcher,
	store *batch.Store,
	registry *backends.Registry,
	hub *socket.Hub,
) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		store:      store,
		registry:   registry,
		hub:        hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type processBatchRequest struct {
	ItemOverrides map[string]models.ItemOverride `json:"item_overrides"`
}

func (h *Handler) ScanBarcode(c echo.Context) error {
	var event models.ScanEvent
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(event); err != nil {
		return err
	}

	item, err := h.dispatcher.Scan(c.Request().Context(), event)
	if err != nil {
		if errors.Is(err, models.ErrEmptyBarcode) || errors.Is(err, models.ErrUnknownBackend) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"item":   item,
	})
}

func (h *Handler) ProcessBatch(c echo.Context) error {
	var req processBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	results, err := h.dispatcher.ProcessBatch(c.Request().Context(), req.ItemOverrides)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []models.ProcessResult{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"results": results,
	})
}

func (h *Handler) ClearBatch(c echo.Context) error {
	if err := h.dispatcher.ClearBatch(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) GetBatch(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *Handler) RemoveItem(c echo.Context) error {
	barcode := c.Param("barcode")
	if !h.store.RemoveItem(barcode) {
		return echo.NewHTTPError(http.StatusNotFound, "item not in batch")
	}
	ctx := c.Request().Context()
	if err := h.store.Save(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.hub.NotifyBatchUpdated(h.store.Snapshot())
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

type backendInfo struct {
	ID             string                     `json:"id"`
	Name           string                     `json:"name"`
	RequiredFields []backends.FieldDescriptor `json:"required_fields"`
}

func (h *Handler) ListBackends(c echo.Context) error {
	infos := make([]backendInfo, 0)
	for _, id := range h.registry.IDs() {
		backend, _ := h.registry.Get(id)
		infos = append(infos, backendInfo{
			ID:             id,
			Name:           backend.Name(),
			RequiredFields: backend.RequiredFields(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"backends": infos})
}

// Socket upgrades the connection and registers it as a batch observer. The
// current snapshot is sent immediately so new observers start in sync.
func (h *Handler) Socket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.hub.Register(conn)
	if err := h.hub.SendSnapshot(conn, h.store.Snapshot()); err != nil {
		return err
	}
	return nil
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "barcode-router",
		"observers": h.hub.Count(),
	})
}
