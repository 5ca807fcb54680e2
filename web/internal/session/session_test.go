package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/library-web/web/internal/session"
	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestFromToken(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		token      string
		wantAuth   bool
		wantTenant string
		wantUser   string
	}{
		{
			name:  "empty",
			token: "",
		},
		{
			name:  "garbage",
			token: "not-a-jwt",
		},
		{
			name: "expired",
			token: sign(t, jwt.MapClaims{
				"company": "acme",
				"exp":     now.Add(-time.Minute).Unix(),
			}),
		},
		{
			name: "tenant user",
			token: sign(t, jwt.MapClaims{
				"company":  "acme",
				"username": "ana",
				"email":    "ana@acme.io",
				"exp":      now.Add(time.Hour).Unix(),
			}),
			wantAuth:   true,
			wantTenant: "acme",
			wantUser:   "ana",
		},
		{
			name: "no company claim",
			token: sign(t, jwt.MapClaims{
				"email": "root@lib.io",
			}),
			wantAuth: true,
			wantUser: "root@lib.io",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := session.FromToken(tt.token, now)
			require.Equal(t, tt.wantAuth, id.IsAuthenticated())
			tenant, ok := id.CurrentTenant()
			require.Equal(t, tt.wantTenant, tenant)
			require.Equal(t, tt.wantTenant != "", ok)
			require.Equal(t, tt.wantUser, id.UserName())
			if !tt.wantAuth {
				require.Empty(t, id.Token())
			}
		})
	}
}

func TestTokenContext(t *testing.T) {
	ctx := context.Background()
	require.Empty(t, session.TokenFrom(ctx))
	require.Empty(t, session.TokenFrom(session.WithToken(ctx, "")))
	require.Equal(t, "abc", session.TokenFrom(session.WithToken(ctx, "abc")))
}
