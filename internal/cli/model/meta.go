package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation — входные данные не прошли проверку, до хранилища они не доходят.
var ErrValidation = errors.New("validation error")

// Meta — общие поля жизненного цикла любой записи.
type Meta struct {
	ID        string     `json:"id"`
	IsSynced  bool       `json:"is_synced"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"` // только для flower/fruit
}

// Base возвращает указатель на общие поля; через него generic-код работает с любой сущностью.
func (m *Meta) Base() *Meta { return m }

// Deleted сообщает, помечена ли запись мягким удалением.
func (m *Meta) Deleted() bool { return m.DeletedAt != nil }

// Entity реализуется указателями на доменные структуры (*Tree, *Flower, ...).
type Entity interface {
	Base() *Meta
}

// Kind names.
const (
	KindTree   = "tree"
	KindFlower = "flower"
	KindFruit  = "fruit"
	KindUser   = "user"
)

// Kinds lists every entity kind in sync order: parents before children.
var Kinds = []string{KindUser, KindTree, KindFlower, KindFruit}

// Stats — агрегированные счётчики по одной таблице.
type Stats struct {
	Total      int            `json:"total"` // видимые (не удалённые мягко) записи
	Synced     int            `json:"synced"`
	Unsynced   int            `json:"unsynced"`
	Deleted    int            `json:"deleted"`
	Quantity   int            `json:"quantity,omitempty"`
	ByCategory map[string]int `json:"by_category,omitempty"`
}

// ValidationError описывает некорректное значение поля.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
