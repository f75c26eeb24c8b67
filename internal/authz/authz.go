// Package authz enforces checklist ownership for every read and write path.
package authz

import (
	"errors"
	"fmt"

	"github.com/mholden/ticklist/internal/model"
	"github.com/mholden/ticklist/internal/store"
)

// ErrNotFound covers both a missing resource and a resource owned by
// another user. Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("not found")

// Gate resolves checklists and items and confirms they belong to the
// requesting user before any operation touches them.
type Gate struct {
	checklists *store.ChecklistStore
}

func NewGate(checklists *store.ChecklistStore) *Gate {
	return &Gate{checklists: checklists}
}

// Checklist returns the checklist only if it exists and is owned by userID.
func (g *Gate) Checklist(userID, checklistID int64) (*model.Checklist, error) {
	c, err := g.checklists.GetByID(checklistID)
	if err != nil {
		return nil, fmt.Errorf("resolve checklist: %w", err)
	}
	if c == nil || c.UserID != userID {
		return nil, ErrNotFound
	}
	return c, nil
}

// Item returns the item only if the checklist passes the ownership check
// and the item exists under that checklist. An item that belongs to a
// different checklist is treated as missing.
func (g *Gate) Item(userID, checklistID, itemID int64) (*model.ChecklistItem, error) {
	if _, err := g.Checklist(userID, checklistID); err != nil {
		return nil, err
	}

	item, err := g.checklists.GetItemByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("resolve item: %w", err)
	}
	if item == nil || item.ChecklistID != checklistID {
		return nil, ErrNotFound
	}
	return item, nil
}
