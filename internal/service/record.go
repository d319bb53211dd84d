// Package service — бизнес-логика серверного API.
package service

import (
	"JackTrack/internal/model"
	"JackTrack/internal/repo"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

var (
	// ErrUnknownResource — коллекции нет в model.Resources.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrBadRecord — тело не JSON-объект или id не совпадает с путём.
	ErrBadRecord = errors.New("bad record")
	// ErrExists — запись с таким id уже есть.
	ErrExists = errors.New("record already exists")
	// ErrNotFound — записи нет.
	ErrNotFound = repo.ErrNotFound
)

// RecordService хранит записи клиентов: создание только новых id, замена существующих.
type RecordService struct {
	repo repo.RecordRepository
	log  *zap.SugaredLogger
}

func NewRecordService(r repo.RecordRepository, log *zap.SugaredLogger) *RecordService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RecordService{repo: r, log: log}
}

func checkResource(resource string) error {
	if !slices.Contains(model.Resources, resource) {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	return nil
}

// decodeBody проверяет, что тело — JSON-объект с непустым строковым id.
func decodeBody(body []byte) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return "", fmt.Errorf("%w: body must be a JSON object", ErrBadRecord)
	}
	var id string
	if err := json.Unmarshal(obj["id"], &id); err != nil || id == "" {
		return "", fmt.Errorf("%w: id is required", ErrBadRecord)
	}
	return id, nil
}

// Create сохраняет новую запись. ErrExists, если id уже занят.
func (s *RecordService) Create(ctx context.Context, resource string, body []byte) (string, error) {
	if err := checkResource(resource); err != nil {
		return "", err
	}
	id, err := decodeBody(body)
	if err != nil {
		return "", err
	}
	created, err := s.repo.CreateIfAbsent(ctx, &model.Record{Resource: resource, ID: id, Data: string(body)})
	if err != nil {
		return "", err
	}
	if !created {
		return id, ErrExists
	}
	s.log.Infow("record created", "resource", resource, "id", id)
	return id, nil
}

// Replace заменяет тело записи id. Поле id в теле, если есть, должно совпадать.
func (s *RecordService) Replace(ctx context.Context, resource, id string, body []byte) error {
	if err := checkResource(resource); err != nil {
		return err
	}
	bodyID, err := decodeBody(body)
	if err != nil {
		return err
	}
	if bodyID != id {
		return fmt.Errorf("%w: id %q does not match path %q", ErrBadRecord, bodyID, id)
	}
	return s.repo.Replace(ctx, resource, id, string(body))
}

func (s *RecordService) Get(ctx context.Context, resource, id string) (json.RawMessage, error) {
	if err := checkResource(resource); err != nil {
		return nil, err
	}
	rec, err := s.repo.Get(ctx, resource, id)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(rec.Data), nil
}

func (s *RecordService) Delete(ctx context.Context, resource, id string) error {
	if err := checkResource(resource); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, resource, id); err != nil {
		return err
	}
	s.log.Infow("record deleted", "resource", resource, "id", id)
	return nil
}

// List возвращает тела всех записей коллекции.
func (s *RecordService) List(ctx context.Context, resource string) ([]json.RawMessage, error) {
	if err := checkResource(resource); err != nil {
		return nil, err
	}
	recs, err := s.repo.List(ctx, resource)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(recs))
	for _, r := range recs {
		out = append(out, json.RawMessage(r.Data))
	}
	return out, nil
}
