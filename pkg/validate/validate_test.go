package validate_test

import (
	"testing"

	"github.com/Astemirdum/library-web/pkg/validate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

func TestFields(t *testing.T) {
	v := validate.NewCustomValidator()

	tests := []struct {
		name string
		in   signup
		want map[string]string
	}{
		{
			name: "ok",
			in:   signup{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"},
		},
		{
			name: "missing and mismatch",
			in:   signup{Password: "secret1", ConfirmPassword: "other"},
			want: map[string]string{"email": "required", "confirmPassword": "passwordsMismatch"},
		},
		{
			name: "short password",
			in:   signup{Email: "a@b.co", Password: "abc", ConfirmPassword: "abc"},
			want: map[string]string{"password": "tooShort"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, validate.Fields(v.Validate(tt.in)))
		})
	}
}

func TestFields_NotValidation(t *testing.T) {
	require.Equal(t, map[string]string{"": "boom"}, validate.Fields(errors.New("boom")))
}

func TestVar_URL(t *testing.T) {
	v := validate.NewCustomValidator()
	require.Error(t, v.Var("not a url", "url"))
	require.NoError(t, v.Var("https://example.com/x.png", "url"))
}

func TestMessage_HTTPURL(t *testing.T) {
	v := validate.NewCustomValidator()
	require.Equal(t, "invalidUrl", validate.Message(v.Var("ftp://host/x.png", "http_url")))
	require.Equal(t, "invalid", validate.Message(errors.New("boom")))
	require.NoError(t, v.Var("http://covers.example.org/x.png", "http_url"))
}
