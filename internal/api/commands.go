package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/enerlink/enerlink-core/internal/command"
)

// createCommandRequest is the body for POST /api/commands.
type createCommandRequest struct {
	DeviceID   string         `json:"device_id"`
	Type       string         `json:"command_type"`
	Parameters map[string]any `json:"parameters"`
}

// confirmCommandRequest is the body for POST /api/commands/confirm.
// CommandID accepts either the command's ID or its creation timestamp,
// which older firmware sends as the reference.
type confirmCommandRequest struct {
	DeviceID  string `json:"device_id"`
	CommandID string `json:"command_id"`
}

// handleCreateCommand queues a command for a device.
//
// recharge_energy commands additionally credit the device's energy
// balance immediately: the purchase takes effect even if the meter is
// offline and only picks the command up later.
func (s *Server) handleCreateCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.DeviceID == "" {
		writeBadRequest(w, "device_id is required")
		return
	}
	if req.Type == "" {
		writeBadRequest(w, "command_type is required")
		return
	}

	var rechargeAmount float64
	if req.Type == "recharge_energy" {
		amount, ok := numericParameter(req.Parameters, "energy_amount")
		if !ok || amount <= 0 {
			writeError(w, http.StatusBadRequest, ErrCodeValidation,
				"recharge_energy requires a positive numeric parameters.energy_amount")
			return
		}
		rechargeAmount = amount
	}

	cmd := &command.Command{
		DeviceID:   req.DeviceID,
		Type:       req.Type,
		Parameters: req.Parameters,
	}
	if err := s.commands.Enqueue(ctx, cmd); err != nil {
		s.logger.Error("failed to enqueue command", "device_id", req.DeviceID, "error", err)
		writeInternalError(w, "failed to create command")
		return
	}

	if req.Type == "recharge_energy" {
		// The command is already queued at this point. A failed credit
		// leaves it pending, so the meter still receives the recharge
		// instruction even though this request reports 500.
		if _, err := s.recharge.Recharge(ctx, req.DeviceID, rechargeAmount); err != nil {
			s.logger.Error("failed to apply recharge", "device_id", req.DeviceID, "error", err)
			writeInternalError(w, "failed to apply recharge")
			return
		}
	}

	writeJSON(w, http.StatusCreated, cmd)
}

// handleListCommands returns queued commands, oldest first. Both filters
// are optional; devices poll with ?deviceId=...&status=pending.
func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	status := r.URL.Query().Get("status")

	if status != "" && status != command.StatusPending && status != command.StatusExecuted {
		writeBadRequest(w, "status must be pending or executed")
		return
	}

	commands, err := s.commands.List(r.Context(), deviceID, status)
	if err != nil {
		writeInternalError(w, "failed to list commands")
		return
	}
	if commands == nil {
		commands = []command.Command{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": commands, "count": len(commands)})
}

// handleConfirmCommand marks a pending command as executed.
func (s *Server) handleConfirmCommand(w http.ResponseWriter, r *http.Request) {
	var req confirmCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.DeviceID == "" || req.CommandID == "" {
		writeBadRequest(w, "device_id and command_id are required")
		return
	}

	if err := s.commands.Confirm(r.Context(), req.DeviceID, req.CommandID); err != nil {
		if errors.Is(err, command.ErrCommandNotFound) {
			writeNotFound(w, "command not found")
			return
		}
		writeInternalError(w, "failed to confirm command")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "command confirmed"})
}

// numericParameter extracts a float64 parameter from a decoded JSON map.
func numericParameter(params map[string]any, key string) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
