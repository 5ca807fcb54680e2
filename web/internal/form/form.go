package form

import (
	"strconv"
	"strings"

	"github.com/Astemirdum/library-web/pkg/validate"
)

const costDecimals = 2

// FilterCost keeps digits and the first decimal point, with at most two
// fractional digits. It runs on every keystroke.
func FilterCost(raw string) string {
	var (
		b        strings.Builder
		dot      bool
		fraction int
	)
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if dot {
				if fraction == costDecimals {
					continue
				}
				fraction++
			}
			b.WriteRune(r)
		case r == '.' && !dot:
			dot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCost formats a filtered cost with two decimals. It runs on blur;
// input that does not parse is left as typed.
func NormalizeCost(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'f', costDecimals, 64)
}

// FormatCost renders a stored cost the way the copy form shows it.
func FormatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', costDecimals, 64)
}

// ImageURL is the outcome of checking an image address typed into the form.
type ImageURL struct {
	Value   string
	Preview string
	// Err is a message key, empty when the value is usable.
	Err string
}

func (i ImageURL) Valid() bool { return i.Err == "" }

// ValidateImageURL checks syntax only: an absolute http(s) URL with a host.
// An empty value means "no image" and is valid.
func ValidateImageURL(raw string) ImageURL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImageURL{}
	}
	if err := validator.Var(raw, "http_url"); err != nil {
		return ImageURL{Value: raw, Err: validate.Message(err)}
	}
	return ImageURL{Value: raw, Preview: raw}
}

var validator = validate.NewCustomValidator()

// Validate checks the validate tags of a form struct and returns field -> message key.
// A nil map means the form is valid.
func Validate(v any) map[string]string {
	if err := validator.Validate(v); err != nil {
		return validate.Fields(err)
	}
	return nil
}
