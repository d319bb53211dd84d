package model

import "time"

// Flower — учёт обёрнутых соцветий на дереве.
type Flower struct {
	Meta
	TreeID    string    `json:"tree_id"`
	Quantity  int       `json:"quantity"`
	WrappedAt time.Time `json:"wrapped_at"`
	ImageURL  string    `json:"image_url"`
}

func (f *Flower) Validate() error {
	if f.TreeID == "" {
		return &ValidationError{Field: "tree_id", Reason: "is required"}
	}
	if f.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	return nil
}
