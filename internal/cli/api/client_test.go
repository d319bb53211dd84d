package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsBearerAndJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trees", r.URL.Path)
		var m map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		assert.Equal(t, "t1", m["id"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", "tok123", time.Second)
	err := c.Resource("trees").Create(context.Background(), map[string]any{"id": "t1"})
	assert.NoError(t, err)
}

func TestClient_NoTokenNoAuthorizationHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	assert.NoError(t, NewClient(ts.URL, "", 0).Health(context.Background()))
}

func TestClient_ErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotFound) }},
		{"conflict", http.StatusConflict, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrConflict) }},
		{"server error", http.StatusBadGateway, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnreachable)
			assert.NotErrorIs(t, err, ErrTimeout)
		}},
		{"rejected", http.StatusUnprocessableEntity, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrRemoteRejected)
			var rr *RemoteRejectedError
			require.True(t, errors.As(err, &rr))
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Status)
			assert.Equal(t, "bad quantity", rr.Body)
			assert.Equal(t, "/flowers/f1", rr.Path)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad quantity", tc.status)
			}))
			defer ts.Close()
			err := NewClient(ts.URL, "", time.Second).Resource("flowers").Update(context.Background(), "f1", map[string]any{})
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	_, err := NewClient(ts.URL, "", 50*time.Millisecond).Resource("trees").Get(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestClient_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := NewClient(url, "", time.Second).Health(context.Background())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestResource_ExistsGetList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/u1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"u1","email":"a@b.c"}}`))
	})
	mux.HandleFunc("/users/u2", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"u1"},{"id":"u3"}]}`))
	})
	mux.HandleFunc("/trees", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"maintenance"}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ctx := context.Background()
	users := NewClient(ts.URL, "", time.Second).Resource("users")

	ok, err := users.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = users.Exists(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, err := users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","email":"a@b.c"}`, string(raw))

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = NewClient(ts.URL, "", time.Second).Resource("trees").List(ctx)
	assert.ErrorIs(t, err, ErrRemoteRejected)
}

func TestResource_PathEscapesID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trees/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	assert.NoError(t, NewClient(ts.URL, "", time.Second).Resource("trees").Delete(context.Background(), "a/b"))
}

func TestClient_MarshalError(t *testing.T) {
	err := NewClient("http://example.invalid", "", time.Second).Resource("trees").Create(context.Background(), map[string]any{"c": make(chan int)})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnreachable)
}
