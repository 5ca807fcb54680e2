package handler

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/Astemirdum/library-web/web/internal/form"
	"github.com/Astemirdum/library-web/web/internal/i18n"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templates embed.FS

const (
	pageCatalog = "catalog"
	pageLogin   = "login"
	pageSignup  = "signup"
	pageCreate  = "create"
	pageBorrow  = "borrow"
)

// renderer executes one layout+page set per page. Each render clones the set
// to bind the request locale.
type renderer struct {
	pages    map[string]*template.Template
	messages *i18n.Catalog
}

func newRenderer(messages *i18n.Catalog) (*renderer, error) {
	r := &renderer{
		pages:    make(map[string]*template.Template),
		messages: messages,
	}
	tag := messages.Default()
	for _, name := range []string{pageCatalog, pageLogin, pageSignup, pageCreate, pageBorrow} {
		t, err := template.New("layout.html").
			Funcs(r.funcs(tag)).
			ParseFS(templates, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, errors.Wrapf(err, "parse page %s", name)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	base, ok := r.pages[name]
	if !ok {
		return errors.Errorf("unknown page %q", name)
	}
	t, err := base.Clone()
	if err != nil {
		return err
	}
	return t.Funcs(r.funcs(locale(c))).ExecuteTemplate(w, "layout", data)
}

func (r *renderer) funcs(tag language.Tag) template.FuncMap {
	return template.FuncMap{
		"t": r.messages.Translator(tag),
		"toast": func(t toast.Toast) string {
			return r.messages.T(tag, t.Key, t.Args)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(time.DateOnly)
		},
		"dateOnly": model.DateOnly,
		"cost":     form.FormatCost,
		"join":     strings.Join,
		"add":      func(a, b int) int { return a + b },
		"dict": func(kv ...any) map[string]any {
			m := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				k, _ := kv[i].(string)
				m[k] = kv[i+1]
			}
			return m
		},
		"has": func(list []string, v string) bool {
			for _, x := range list {
				if x == v {
					return true
				}
			}
			return false
		},
	}
}
