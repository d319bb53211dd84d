package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout — таймаут одного запроса к серверу.
const DefaultTimeout = 10 * time.Second

// Client — HTTP-клиент удалённого REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient создаёт клиент. Пустой token отключает заголовок Authorization.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL возвращает адрес сервера.
func (c *Client) BaseURL() string { return c.baseURL }

// Resource возвращает коллекцию /{name}.
func (c *Client) Resource(name string) *Resource {
	return &Resource{c: c, name: name}
}

// Health проверяет доступность сервера через GET /health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// do выполняет запрос и классифицирует ошибку. При 2xx возвращает тело ответа.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrTimeout, err)
		}
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrUnreachable, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrTimeout, err)
		}
		return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrUnreachable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrConflict)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%s %s: %w: status %d", method, path, ErrUnreachable, resp.StatusCode)
	default:
		return nil, &RemoteRejectedError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
