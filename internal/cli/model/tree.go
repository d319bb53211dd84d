package model

import "strings"

// Tree statuses.
const (
	TreeActive   = "active"
	TreeInactive = "inactive"
)

// Tree — дерево джекфрута. Удаляется физически, мягкого удаления нет.
type Tree struct {
	Meta
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      string  `json:"status"`
	ImagePath   string  `json:"image_path"` // локальный путь к фото или URL в хранилище
}

// Validate проверяет поля перед созданием записи.
func (t *Tree) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	if t.Status != TreeActive && t.Status != TreeInactive {
		return &ValidationError{Field: "status", Reason: "must be active or inactive"}
	}
	if t.Latitude < -90 || t.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "out of range"}
	}
	if t.Longitude < -180 || t.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "out of range"}
	}
	return nil
}
