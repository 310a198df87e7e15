package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/api/dto"
	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/ports"
	"github.com/spad0604/robot-delivery/internal/services"
)

// OrderHandler exposes order listing and creation. OrderLog is optional.
type OrderHandler struct {
	Store    ports.OrderStore
	Creator  *services.OrderCreator
	OrderLog ports.OrderLog
	Log      *zap.Logger
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.ListOrders(r.Context())
	if err != nil {
		h.Log.Error("list orders failed", zap.Error(err))
		WriteError(w, r, http.StatusBadGateway, "order store unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewListOrdersResponse(domain.SortNewestFirst(orders)))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")

	order, err := h.Store.GetOrder(r.Context(), id)
	if ve, invalid := domain.IsValidationError(err); invalid {
		WriteError(w, r, http.StatusBadRequest, ve.Error())
		return
	}
	if err != nil {
		h.Log.Error("get order failed", zap.String("order_id", id), zap.Error(err))
		WriteError(w, r, http.StatusBadGateway, "order store unavailable")
		return
	}
	if order == nil {
		WriteError(w, r, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, r, http.StatusOK, order)
}

// History lists orders this service created, from the local order log.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.OrderLog == nil {
		WriteError(w, r, http.StatusNotFound, "order history is not enabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			WriteError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	orders, err := h.OrderLog.ListRecent(r.Context(), limit)
	if err != nil {
		h.Log.Error("list order history failed", zap.Error(err))
		WriteError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewListOrdersResponse(orders))
}

// Create accepts either a map link or explicit coordinates.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mapURL := strings.TrimSpace(req.MapURL)
	hasCoords := req.Lat != nil || req.Lng != nil

	var (
		id  string
		err error
	)
	switch {
	case mapURL != "" && hasCoords:
		WriteError(w, r, http.StatusBadRequest, "provide either map_url or lat/lng, not both")
		return
	case mapURL != "":
		id, err = h.Creator.CreateFromURL(r.Context(), mapURL)
	case req.Lat != nil && req.Lng != nil:
		id, err = h.Creator.Create(r.Context(), domain.Coordinates{Lat: *req.Lat, Lon: *req.Lng})
	default:
		WriteError(w, r, http.StatusBadRequest, "map_url or both lat and lng are required")
		return
	}

	if err != nil {
		status, msg := createErrorStatus(err)
		if status >= 500 {
			h.Log.Error("create order failed", zap.Error(err))
		}
		WriteError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateOrderResponse{ID: id})
}

func createErrorStatus(err error) (int, string) {
	_, invalid := domain.IsValidationError(err)

	switch {
	case errors.Is(err, services.ErrCoordinatesNotFound):
		return http.StatusBadRequest, "could not find coordinates in map_url"
	case invalid:
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrRobotPositionUnavailable):
		return http.StatusConflict, "robot position unavailable"
	case errors.Is(err, services.ErrOrderNotCreated):
		return http.StatusBadGateway, "order store rejected the order"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
