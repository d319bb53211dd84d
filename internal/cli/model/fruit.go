package model

import "time"

// Fruit — учёт плодов в пакетах; tree_id дублирует ссылку цветка для быстрых выборок.
type Fruit struct {
	Meta
	FlowerID string    `json:"flower_id"`
	TreeID   string    `json:"tree_id"`
	Quantity int       `json:"quantity"`
	BaggedAt time.Time `json:"bagged_at"`
	ImageURI string    `json:"image_uri"`
}

func (f *Fruit) Validate() error {
	if f.FlowerID == "" {
		return &ValidationError{Field: "flower_id", Reason: "is required"}
	}
	if f.TreeID == "" {
		return &ValidationError{Field: "tree_id", Reason: "is required"}
	}
	if f.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return nil
}
