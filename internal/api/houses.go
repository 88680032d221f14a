package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/enerlink/enerlink-core/internal/house"
	"github.com/enerlink/enerlink-core/internal/telemetry"
)

// houseHistorySize is how many recent measurements accompany a house
// detail response.
const houseHistorySize = 10

// createHouseRequest is the body for POST /api/maisons. DeviceID is
// accepted under both deviceId and device_id; dashboards have shipped
// with each spelling.
type createHouseRequest struct {
	DeviceID    string `json:"deviceId"`
	DeviceIDAlt string `json:"device_id"`
	Nom         string `json:"nom"`
	Adresse     string `json:"adresse"`
}

func (r *createHouseRequest) deviceID() string {
	if r.DeviceID != "" {
		return r.DeviceID
	}
	return r.DeviceIDAlt
}

// handleCreateHouse registers a house against a meter device ID.
func (s *Server) handleCreateHouse(w http.ResponseWriter, r *http.Request) {
	var req createHouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	h := &house.House{
		DeviceID: req.deviceID(),
		Nom:      req.Nom,
		Adresse:  req.Adresse,
	}
	if h.DeviceID == "" || h.Nom == "" {
		writeBadRequest(w, "deviceId and nom are required")
		return
	}

	if err := s.houses.Create(r.Context(), h); err != nil {
		if errors.Is(err, house.ErrHouseExists) {
			writeConflict(w, "a house is already registered for this device")
			return
		}
		s.logger.Error("failed to create house", "device_id", h.DeviceID, "error", err)
		writeInternalError(w, "failed to create house")
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

// handleListHouses returns all registered houses.
func (s *Server) handleListHouses(w http.ResponseWriter, r *http.Request) {
	houses, err := s.houses.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list houses")
		return
	}
	if houses == nil {
		houses = []house.House{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"maisons": houses, "count": len(houses)})
}

// handleGetHouse returns a house with its recent measurements.
func (s *Server) handleGetHouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := chi.URLParam(r, "deviceID")

	h, err := s.houses.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, house.ErrHouseNotFound) {
			writeNotFound(w, "house not found")
			return
		}
		writeInternalError(w, "failed to get house")
		return
	}

	measurements, err := s.recorder.History(ctx, deviceID, houseHistorySize)
	if err != nil {
		writeInternalError(w, "failed to load measurement history")
		return
	}
	if measurements == nil {
		measurements = []telemetry.Measurement{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"maison":  h,
		"mesures": measurements,
	})
}
