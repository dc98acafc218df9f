package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbrevlab/annotab/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "datasets", "test-key", nil)
}

func TestClient_List(t *testing.T) {
	t.Run("parses the listing", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/object/list/datasets", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "test-key", r.Header.Get("apikey"))

			var req listRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 100, req.Limit)
			assert.Equal(t, "name", req.SortBy.Column)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"name":"notes.csv","updated_at":"2026-08-20T10:00:00Z","metadata":{"size":2048}},
				{"name":"readme.txt","updated_at":"2026-08-19T09:00:00Z","metadata":{"size":10}}
			]`))
		})

		infos, err := client.List(context.Background(), "", 0)
		require.NoError(t, err)
		require.Len(t, infos, 2)

		assert.Equal(t, "notes.csv", infos[0].Name)
		assert.Equal(t, int64(2048), infos[0].Size)
		assert.Equal(t, 2026, infos[0].UpdatedAt.Year())
		assert.True(t, infos[0].IsCSV())
		assert.False(t, infos[1].IsCSV())
	})

	t.Run("auth failure maps to sentinel", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.List(context.Background(), "", 0)
		assert.ErrorIs(t, err, domain.ErrAuthFailed)
	})

	t.Run("unreachable backend maps to offline sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close() // port is dead now
		client := NewClient(srv.URL, "datasets", "test-key", nil)

		_, err := client.List(context.Background(), "", 0)
		assert.ErrorIs(t, err, domain.ErrStorageOffline)
	})
}

func TestClient_Download(t *testing.T) {
	t.Run("returns blob bytes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/object/datasets/notes.csv", r.URL.Path)
			w.Write([]byte("sentence,abbreviation\n"))
		})

		data, err := client.Download(context.Background(), "notes.csv")
		require.NoError(t, err)
		assert.Equal(t, "sentence,abbreviation\n", string(data))
	})

	t.Run("escapes object names per segment", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/object/datasets/batch%201/notes%7B37%25%7D.csv", r.URL.EscapedPath())
			w.Write([]byte("ok"))
		})

		_, err := client.Download(context.Background(), "batch 1/notes{37%}.csv")
		require.NoError(t, err)
	})

	t.Run("missing blob maps to sentinel", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.Download(context.Background(), "gone.csv")
		assert.ErrorIs(t, err, domain.ErrObjectNotFound)
	})
}

func TestClient_Upload(t *testing.T) {
	t.Run("sends csv content type and upsert header", func(t *testing.T) {
		var gotUpsert, gotContentType string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/object/datasets/notes%7B50%25%7D.csv", r.URL.EscapedPath())
			gotUpsert = r.Header.Get("x-upsert")
			gotContentType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusOK)
		})

		err := client.Upload(context.Background(), "notes{50%}.csv", []byte("data"), true)
		require.NoError(t, err)
		assert.Equal(t, "true", gotUpsert)
		assert.Equal(t, "text/csv", gotContentType)
	})

	t.Run("no upsert header without upsert", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("x-upsert"))
			w.WriteHeader(http.StatusOK)
		})

		require.NoError(t, client.Upload(context.Background(), "notes.csv", []byte("data"), false))
	})

	t.Run("forbidden maps to auth sentinel", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		err := client.Upload(context.Background(), "notes.csv", []byte("data"), true)
		assert.ErrorIs(t, err, domain.ErrAuthFailed)
	})
}

func TestClient_Remove(t *testing.T) {
	t.Run("sends prefixes body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/object/datasets", r.URL.Path)

			var req removeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"notes.csv"}, req.Prefixes)
			w.Write([]byte(`[]`))
		})

		require.NoError(t, client.Remove(context.Background(), []string{"notes.csv"}))
	})

	t.Run("empty name list is a no-op", func(t *testing.T) {
		called := false
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		require.NoError(t, client.Remove(context.Background(), nil))
		assert.False(t, called)
	})
}
