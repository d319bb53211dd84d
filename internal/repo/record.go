package repo

import (
	"JackTrack/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound — записи нет в коллекции.
var ErrNotFound = errors.New("record not found")

// RecordRepository — доступ к записям коллекций.
type RecordRepository interface {
	// CreateIfAbsent создаёт запись; created=false, если id уже занят.
	CreateIfAbsent(ctx context.Context, rec *model.Record) (created bool, err error)
	Get(ctx context.Context, resource, id string) (*model.Record, error)
	// Replace заменяет тело существующей записи. ErrNotFound, если её нет.
	Replace(ctx context.Context, resource, id, data string) error
	Delete(ctx context.Context, resource, id string) error
	List(ctx context.Context, resource string) ([]model.Record, error)
}

type recordRepo struct {
	db *gorm.DB
}

// NewRecordRepository создаёт репозиторий записей.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) CreateIfAbsent(ctx context.Context, rec *model.Record) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource"}, {Name: "id"}},
		DoNothing: true,
	}).Create(rec)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *recordRepo) Get(ctx context.Context, resource, id string) (*model.Record, error) {
	var rec model.Record
	err := r.db.WithContext(ctx).
		Where("resource = ? AND id = ?", resource, id).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepo) Replace(ctx context.Context, resource, id, data string) error {
	tx := r.db.WithContext(ctx).Model(&model.Record{}).
		Where("resource = ? AND id = ?", resource, id).
		Update("data", data)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepo) Delete(ctx context.Context, resource, id string) error {
	tx := r.db.WithContext(ctx).
		Where("resource = ? AND id = ?", resource, id).
		Delete(&model.Record{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepo) List(ctx context.Context, resource string) ([]model.Record, error) {
	var recs []model.Record
	err := r.db.WithContext(ctx).
		Where("resource = ?", resource).
		Order("created_at, id").
		Find(&recs).Error
	return recs, err
}
