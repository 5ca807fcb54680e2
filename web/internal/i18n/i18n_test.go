package i18n_test

import (
	"testing"

	"github.com/Astemirdum/library-web/web/internal/i18n"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	c := i18n.MustLoad("es")
	require.Equal(t, language.Spanish, c.Default())

	tests := []struct {
		name           string
		cookie, accept string
		want           language.Tag
	}{
		{"default", "", "", language.Spanish},
		{"cookie wins", "en", "es-MX,es;q=0.9", language.English},
		{"accept header", "", "en-GB,en;q=0.8", language.English},
		{"regional spanish", "", "es-AR", language.Spanish},
		{"unsupported", "", "ja-JP", language.Spanish},
		{"bad cookie falls through", "zz-@@", "en", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Negotiate(tt.cookie, tt.accept))
		})
	}
}

func TestT(t *testing.T) {
	c := i18n.MustLoad("es")

	require.Equal(t, "Libro actualizado", c.T(language.Spanish, "bookUpdatedSuccess", nil))
	require.Equal(t, "Book updated", c.T(language.English, "bookUpdatedSuccess", nil))
	require.Equal(t, "Page 2 of 5", c.T(language.English, "pageOf", map[string]string{"current": "2", "total": "5"}))
	require.Equal(t, "noSuchKey", c.T(language.English, "noSuchKey", nil))

	tr := c.Translator(language.English)
	require.Equal(t, "3 copies", tr("copiesCount", "count", 3))
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	c := i18n.MustLoad("en")
	for _, key := range []string{"fetchBooksError", "noBooksFound", "copyNotFound", "passwordsMismatch", "invalidUrl"} {
		for _, tag := range c.Supported() {
			require.NotEqual(t, key, c.T(tag, key, nil), "%s missing in %s", key, tag)
		}
	}
}

func TestLoad_UnknownFallback(t *testing.T) {
	_, err := i18n.Load("fr")
	require.Error(t, err)
}
