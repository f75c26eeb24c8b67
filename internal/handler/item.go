package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mholden/ticklist/internal/auth"
	"github.com/mholden/ticklist/internal/authz"
	"github.com/mholden/ticklist/internal/model"
	"github.com/mholden/ticklist/internal/store"
	"github.com/mholden/ticklist/internal/websocket"
)

type ItemHandler struct {
	checklists *store.ChecklistStore
	gate       *authz.Gate
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewItemHandler(cs *store.ChecklistStore, gate *authz.Gate, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{checklists: cs, gate: gate, hub: hub, logger: logger}
}

func (h *ItemHandler) broadcast(userID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(userID, msg)
	}
}

type itemRequest struct {
	Name string `json:"item_name"`
}

// resolveChecklist parses checklist_id and runs the ownership check,
// writing the error response itself. Returns false if the request is done.
func (h *ItemHandler) resolveChecklist(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID := auth.UserID(r.Context())

	checklistID, err := parsePathID(r, "checklist_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid checklist_id"})
		return 0, 0, false
	}

	if _, err := h.gate.Checklist(userID, checklistID); err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Checklist not found"})
			return 0, 0, false
		}
		h.logger.Error("resolve checklist", "checklist_id", checklistID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return 0, 0, false
	}

	return userID, checklistID, true
}

// resolveItem additionally parses item_id and checks the item belongs to
// the checklist in the path.
func (h *ItemHandler) resolveItem(w http.ResponseWriter, r *http.Request) (int64, *model.ChecklistItem, bool) {
	userID, checklistID, ok := h.resolveChecklist(w, r)
	if !ok {
		return 0, nil, false
	}

	itemID, err := parsePathID(r, "item_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return 0, nil, false
	}

	item, err := h.gate.Item(userID, checklistID, itemID)
	if err != nil {
		if errors.Is(err, authz.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found"})
			return 0, nil, false
		}
		h.logger.Error("resolve item", "item_id", itemID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return 0, nil, false
	}

	return userID, item, true
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	_, checklistID, ok := h.resolveChecklist(w, r)
	if !ok {
		return
	}

	items, err := h.checklists.ListItems(checklistID)
	if err != nil {
		h.logger.Error("list items", "checklist_id", checklistID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.ChecklistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, checklistID, ok := h.resolveChecklist(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_name is required"})
		return
	}

	item, err := h.checklists.CreateItem(checklistID, req.Name)
	if err != nil {
		h.logger.Error("create item", "checklist_id", checklistID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	h.broadcast(userID, websocket.NewMessage("item", "created", item.ID))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, item, ok := h.resolveItem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Toggle flips the item's completion flag. The flag is never set to an
// explicit value; two toggles restore the original state.
func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, item, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	updated, err := h.checklists.ToggleItem(item.ID)
	if err != nil {
		h.logger.Error("toggle item", "item_id", item.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle item"})
		return
	}
	if updated == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found"})
		return
	}

	h.broadcast(userID, websocket.NewMessage("item", "toggled", updated.ID))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ItemHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, item, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_name is required"})
		return
	}

	updated, err := h.checklists.RenameItem(item.ID, req.Name)
	if err != nil {
		h.logger.Error("rename item", "item_id", item.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to rename item"})
		return
	}
	if updated == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found"})
		return
	}

	h.broadcast(userID, websocket.NewMessage("item", "renamed", updated.ID))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, item, ok := h.resolveItem(w, r)
	if !ok {
		return
	}

	if err := h.checklists.DeleteItem(item.ID); err != nil {
		h.logger.Error("delete item", "item_id", item.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast(userID, websocket.NewMessage("item", "deleted", item.ID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}
