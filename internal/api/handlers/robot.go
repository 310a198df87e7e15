package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/api/dto"
	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/metrics"
	"github.com/spad0604/robot-delivery/internal/ports"
)

type RobotHandler struct {
	Store   ports.OrderStore
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func (h *RobotHandler) Get(w http.ResponseWriter, r *http.Request) {
	pos, err := h.Store.GetRobotPosition(r.Context())
	if err != nil {
		h.Log.Error("read robot position failed", zap.Error(err))
		WriteError(w, r, http.StatusBadGateway, "order store unavailable")
		return
	}
	if pos == nil {
		WriteError(w, r, http.StatusNotFound, "robot position not set")
		return
	}

	writeJSON(w, r, http.StatusOK, pos)
}

// Put overwrites the robot position, e.g. to place the robot before a
// simulation run.
func (h *RobotHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req dto.RobotPositionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Lat == nil || req.Lon == nil {
		WriteError(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}

	c := domain.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	if err := c.Validate(); err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pos := domain.NewRobotPosition(c)
	if err := h.Store.SetRobotPosition(r.Context(), pos); err != nil {
		h.Metrics.PositionUpdate("failure")
		h.Log.Error("write robot position failed", zap.Error(err))
		WriteError(w, r, http.StatusBadGateway, "order store unavailable")
		return
	}
	h.Metrics.PositionUpdate("success")

	writeJSON(w, r, http.StatusOK, pos)
}
