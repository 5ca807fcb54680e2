package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	md "github.com/Astemirdum/library-web/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "none"},
		{name: "cookie", cookie: "c.c.c", want: "c.c.c"},
		{name: "header wins", cookie: "c.c.c", header: "Bearer h.h.h", want: "h.h.h"},
		{name: "not bearer", header: "Basic abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var got string
			e.GET("/", func(c echo.Context) error {
				got = md.RawToken(c)
				return c.NoContent(http.StatusOK)
			}, md.Token)

			r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: md.TokenCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set(md.AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.want, got)
		})
	}
}
