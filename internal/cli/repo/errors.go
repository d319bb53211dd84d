package repo

import (
	"errors"

	"JackTrack/internal/cli/model"
)

var (
	// ErrNotFound — записи нет, либо она скрыта мягким удалением.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey — нарушено ограничение уникальности (например, email пользователя).
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrValidation — данные отклонены до записи в хранилище.
	ErrValidation = model.ErrValidation
	// ErrNotSupported — операция неприменима к виду сущности (мягкое удаление дерева).
	ErrNotSupported = errors.New("operation not supported for this kind")
)

// StorageError — прочие ошибки локального хранилища. Фатальны для вызвавшей операции.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
