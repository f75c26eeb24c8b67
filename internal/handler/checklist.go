package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mholden/ticklist/internal/auth"
	"github.com/mholden/ticklist/internal/authz"
	"github.com/mholden/ticklist/internal/model"
	"github.com/mholden/ticklist/internal/store"
	"github.com/mholden/ticklist/internal/websocket"
)

type ChecklistHandler struct {
	checklists *store.ChecklistStore
	gate       *authz.Gate
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewChecklistHandler(cs *store.ChecklistStore, gate *authz.Gate, hub *websocket.Hub, logger *slog.Logger) *ChecklistHandler {
	return &ChecklistHandler{checklists: cs, gate: gate, hub: hub, logger: logger}
}

func (h *ChecklistHandler) broadcast(userID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(userID, msg)
	}
}

type checklistRequest struct {
	Name string `json:"name"`
}

func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	checklists, err := h.checklists.ListByUser(userID)
	if err != nil {
		h.logger.Error("list checklists", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list checklists"})
		return
	}
	if checklists == nil {
		checklists = []model.Checklist{}
	}
	writeJSON(w, http.StatusOK, checklists)
}

func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req checklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	checklist, err := h.checklists.Create(req.Name, userID)
	if err != nil {
		h.logger.Error("create checklist", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create checklist"})
		return
	}

	h.broadcast(userID, websocket.NewMessage("checklist", "created", checklist.ID))
	writeJSON(w, http.StatusCreated, checklist)
}

func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	checklistID, err := parsePathID(r, "checklist_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid checklist_id"})
		return
	}

	if _, err := h.gate.Checklist(userID, checklistID); err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Checklist not found"})
			return
		}
		h.logger.Error("resolve checklist", "checklist_id", checklistID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete checklist"})
		return
	}

	if err := h.checklists.Delete(checklistID); err != nil {
		h.logger.Error("delete checklist", "checklist_id", checklistID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete checklist"})
		return
	}

	h.broadcast(userID, websocket.NewMessage("checklist", "deleted", checklistID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Checklist deleted successfully"})
}

func parsePathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
