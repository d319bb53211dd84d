package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable — сервер недоступен (сетевая ошибка или 5xx). Запись остаётся несинхронизированной.
	ErrUnreachable = errors.New("remote unreachable")
	// ErrTimeout — запрос не уложился в таймаут клиента.
	ErrTimeout = fmt.Errorf("%w: timeout", ErrUnreachable)
	// ErrNotFound — 404.
	ErrNotFound = errors.New("remote record not found")
	// ErrConflict — 409, сервер уже хранит запись с этим id.
	ErrConflict = errors.New("remote conflict")
	// ErrRemoteRejected — прочие 4xx.
	ErrRemoteRejected = errors.New("remote rejected request")
)

// RemoteRejectedError описывает 4xx-ответ, который нельзя исправить повтором.
type RemoteRejectedError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *RemoteRejectedError) Error() string {
	msg := fmt.Sprintf("%s %s: remote rejected with status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *RemoteRejectedError) Is(target error) bool { return target == ErrRemoteRejected }

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
