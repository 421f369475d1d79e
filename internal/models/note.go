package models

import "time"

type Note struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateNoteRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateNoteRequest struct {
	Content string `json:"content"`
}
