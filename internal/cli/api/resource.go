package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Resource — REST-коллекция сервера (/trees, /flowers, ...).
type Resource struct {
	c    *Client
	name string
}

// Name возвращает имя коллекции.
func (r *Resource) Name() string { return r.name }

func (r *Resource) item(id string) string {
	return "/" + r.name + "/" + url.PathEscape(id)
}

// Get возвращает запись по id. ErrNotFound, если записи нет.
func (r *Resource) Get(ctx context.Context, id string) (json.RawMessage, error) {
	b, err := r.c.do(ctx, http.MethodGet, r.item(id), nil)
	if err != nil {
		return nil, err
	}
	return unwrapData(b)
}

// Exists проверяет наличие записи на сервере.
func (r *Resource) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.c.do(ctx, http.MethodGet, r.item(id), nil)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// Create отправляет POST /{name}.
func (r *Resource) Create(ctx context.Context, payload any) error {
	_, err := r.c.do(ctx, http.MethodPost, "/"+r.name, payload)
	return err
}

// Update отправляет PUT /{name}/{id}.
func (r *Resource) Update(ctx context.Context, id string, payload any) error {
	_, err := r.c.do(ctx, http.MethodPut, r.item(id), payload)
	return err
}

// Delete отправляет DELETE /{name}/{id}. ErrNotFound, если записи уже нет.
func (r *Resource) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.item(id), nil)
	return err
}

type listResponse struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
	Error   string            `json:"error,omitempty"`
}

// List загружает всю коллекцию (ответ вида {success, data}).
func (r *Resource) List(ctx context.Context) ([]json.RawMessage, error) {
	b, err := r.c.do(ctx, http.MethodGet, "/"+r.name, nil)
	if err != nil {
		return nil, err
	}
	var lr listResponse
	if err := json.Unmarshal(b, &lr); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", r.name, err)
	}
	if !lr.Success {
		return nil, &RemoteRejectedError{Method: http.MethodGet, Path: "/" + r.name, Status: http.StatusOK, Body: lr.Error}
	}
	return lr.Data, nil
}

// unwrapData принимает и голую запись, и обёртку {success, data}.
func unwrapData(b []byte) (json.RawMessage, error) {
	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err == nil && env.Success != nil && len(env.Data) > 0 {
		return env.Data, nil
	}
	return json.RawMessage(b), nil
}
