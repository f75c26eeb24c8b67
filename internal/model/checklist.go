package model

import "time"

type Checklist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ChecklistItem struct {
	ID          int64     `json:"id"`
	ChecklistID int64     `json:"checklist_id"`
	Name        string    `json:"item_name"`
	Completed   bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}
