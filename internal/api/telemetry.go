package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/enerlink/enerlink-core/internal/telemetry"
)

// handleIngestData accepts a telemetry measurement from an energy meter.
//
// A malformed or incomplete payload is a 400. When registration is
// enforced, readings from unknown devices are rejected with a 404 so the
// meter can surface a provisioning error instead of silently filling the
// database.
func (s *Server) handleIngestData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var p telemetry.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	m, err := p.Measurement(time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if s.telCfg.RequireRegistration {
		registered, err := s.houses.Exists(ctx, m.DeviceID)
		if err != nil {
			writeInternalError(w, "failed to check device registration")
			return
		}
		if !registered {
			writeNotFound(w, "device is not registered")
			return
		}
	}

	if err := s.recorder.Record(ctx, m); err != nil {
		s.logger.Error("failed to record measurement", "device_id", m.DeviceID, "error", err)
		writeInternalError(w, "failed to store measurement")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "data recorded"})
}

// handleLatestData returns the most recent measurement for a device.
func (s *Server) handleLatestData(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	m, err := s.recorder.Latest(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, telemetry.ErrNoMeasurements) {
			writeNotFound(w, "no data for this device")
			return
		}
		writeInternalError(w, "failed to load latest measurement")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleDataHistory returns recent measurements for a device, newest first.
// The optional ?limit= parameter is clamped by the repository.
func (s *Server) handleDataHistory(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	measurements, err := s.recorder.History(r.Context(), deviceID, limit)
	if err != nil {
		writeInternalError(w, "failed to load measurement history")
		return
	}
	if measurements == nil {
		measurements = []telemetry.Measurement{}
	}
	writeJSON(w, http.StatusOK, measurements)
}
