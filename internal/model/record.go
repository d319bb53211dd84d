package model

import "time"

// Resources — коллекции, которые принимает сервер.
var Resources = []string{"users", "trees", "flowers", "fruits"}

// Record — серверная копия клиентской записи. Тело хранится как есть (JSON),
// сервер его не интерпретирует, кроме поля id.
type Record struct {
	Resource string `gorm:"primaryKey;size:32"`
	ID       string `gorm:"primaryKey;size:64"`

	Data string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}
