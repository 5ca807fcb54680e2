package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/service/client"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			require.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
			require.Equal(t, "2", r.URL.Query().Get("page"))
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["v"]})
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Copy not found"}`))
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}
	}))
	defer srv.Close()

	c := client.New(zap.NewNop(), config.Backend{BaseURL: srv.URL + "/", Timeout: time.Second})
	ctx := session.WithToken(context.Background(), "tkn")

	var out map[string]string
	code, err := c.Do(ctx, http.MethodPost, "/ok", url.Values{"page": {"2"}}, map[string]string{"v": "x"}, &out)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "x", out["echo"])

	code, err = c.Do(ctx, http.MethodGet, "/missing", nil, nil, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.True(t, errors.Is(err, errs.ErrNotFound))
	require.EqualError(t, err, "Copy not found")

	code, err = c.Do(ctx, http.MethodGet, "/boom", nil, nil, nil)
	require.Equal(t, http.StatusInternalServerError, code)
	var se *errs.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "boom", se.Message)
}

func TestClient_DoUnavailable(t *testing.T) {
	c := client.New(zap.NewNop(), config.Backend{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	code, err := c.Do(context.Background(), http.MethodGet, "/api/books", nil, nil, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusServiceUnavailable, code)
}
