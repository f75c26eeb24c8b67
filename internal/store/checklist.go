package store

import (
	"database/sql"
	"fmt"

	"github.com/mholden/ticklist/internal/model"
)

type ChecklistStore struct {
	db *sql.DB
}

func NewChecklistStore(db *sql.DB) *ChecklistStore {
	return &ChecklistStore{db: db}
}

// --- Checklist methods ---

func scanChecklist(scanner interface{ Scan(...any) error }) (*model.Checklist, error) {
	var c model.Checklist
	err := scanner.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const checklistCols = `id, name, user_id, created_at`

func (s *ChecklistStore) Create(name string, userID int64) (*model.Checklist, error) {
	result, err := s.db.Exec(
		`INSERT INTO checklists (name, user_id) VALUES (?, ?)`,
		name, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert checklist: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChecklistStore) GetByID(id int64) (*model.Checklist, error) {
	row := s.db.QueryRow(`SELECT `+checklistCols+` FROM checklists WHERE id = ?`, id)
	c, err := scanChecklist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist: %w", err)
	}
	return c, nil
}

func (s *ChecklistStore) ListByUser(userID int64) ([]model.Checklist, error) {
	rows, err := s.db.Query(
		`SELECT `+checklistCols+` FROM checklists WHERE user_id = ? ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	defer rows.Close()

	var checklists []model.Checklist
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist: %w", err)
		}
		checklists = append(checklists, *c)
	}
	return checklists, rows.Err()
}

// Delete removes a checklist and every item under it in one transaction.
// Callers never observe a checklist without its items or the reverse.
func (s *ChecklistStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete checklist: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM checklist_items WHERE checklist_id = ?`, id); err != nil {
		return fmt.Errorf("delete checklist items: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM checklists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete checklist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete checklist: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanItem(scanner interface{ Scan(...any) error }) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	var completed int

	err := scanner.Scan(&item.ID, &item.ChecklistID, &item.Name, &completed, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.Completed = completed != 0
	return &item, nil
}

const itemCols = `id, checklist_id, item_name, is_completed, created_at`

func (s *ChecklistStore) CreateItem(checklistID int64, name string) (*model.ChecklistItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO checklist_items (checklist_id, item_name) VALUES (?, ?)`,
		checklistID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ChecklistStore) GetItemByID(id int64) (*model.ChecklistItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM checklist_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ChecklistStore) ListItems(checklistID int64) ([]model.ChecklistItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM checklist_items WHERE checklist_id = ? ORDER BY id ASC`,
		checklistID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ChecklistItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ToggleItem flips the completion flag and returns the updated item.
// Returns (nil, nil) when the item does not exist.
func (s *ChecklistStore) ToggleItem(id int64) (*model.ChecklistItem, error) {
	item, err := s.GetItemByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	_, err = s.db.Exec(
		`UPDATE checklist_items SET is_completed = NOT is_completed WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle item: %w", err)
	}
	return s.GetItemByID(id)
}

// RenameItem updates the item name and returns the updated item.
// Returns (nil, nil) when the item does not exist.
func (s *ChecklistStore) RenameItem(id int64, name string) (*model.ChecklistItem, error) {
	_, err := s.db.Exec(
		`UPDATE checklist_items SET item_name = ? WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("rename item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ChecklistStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM checklist_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
