package i18n

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

const CookieName = "locale"

// Catalog holds the message tables of every embedded locale.
type Catalog struct {
	tags     []language.Tag
	messages map[language.Tag]map[string]string
	matcher  language.Matcher
}

// Load reads the embedded catalogs; fallback is used when negotiation finds no match.
func Load(fallback string) (*Catalog, error) {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, errors.Wrap(err, "read locales")
	}
	fb, err := language.Parse(fallback)
	if err != nil {
		return nil, errors.Wrapf(err, "parse fallback locale %q", fallback)
	}

	c := &Catalog{messages: make(map[language.Tag]map[string]string, len(entries))}
	for _, e := range entries {
		name := e.Name()
		tag, err := language.Parse(strings.TrimSuffix(name, path.Ext(name)))
		if err != nil {
			return nil, errors.Wrapf(err, "locale file %s", name)
		}
		data, err := locales.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		msgs := map[string]string{}
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, errors.Wrapf(err, "decode %s", name)
		}
		c.messages[tag] = msgs
		c.tags = append(c.tags, tag)
	}
	if _, ok := c.messages[fb]; !ok {
		return nil, errors.Errorf("no catalog for fallback locale %q", fallback)
	}
	// the matcher falls back to its first tag
	sort.SliceStable(c.tags, func(i, j int) bool {
		return c.tags[i] == fb && c.tags[j] != fb
	})
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func MustLoad(fallback string) *Catalog {
	c, err := Load(fallback)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Supported() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

func (c *Catalog) Default() language.Tag {
	return c.tags[0]
}

// Negotiate picks the locale from the explicit cookie choice, then Accept-Language.
func (c *Catalog) Negotiate(cookie, acceptLanguage string) language.Tag {
	if cookie != "" {
		if tag, ok := c.Match(cookie); ok {
			return tag
		}
	}
	if acceptLanguage != "" {
		desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(desired) > 0 {
			_, idx, conf := c.matcher.Match(desired...)
			if conf != language.No {
				return c.tags[idx]
			}
		}
	}
	return c.Default()
}

// Match resolves a single locale name to a supported tag.
func (c *Catalog) Match(name string) (language.Tag, bool) {
	tag, err := language.Parse(name)
	if err != nil {
		return c.Default(), false
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.Default(), false
	}
	return c.tags[idx], true
}

// T renders key in locale tag. Placeholders look like {name}. Missing keys render as the key.
func (c *Catalog) T(tag language.Tag, key string, args map[string]string) string {
	msg, ok := c.messages[tag][key]
	if !ok {
		msg, ok = c.messages[c.Default()][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, 2*len(args))
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Translator binds a locale for templates: t "key" "name" "value" ...
func (c *Catalog) Translator(tag language.Tag) func(key string, kv ...any) string {
	return func(key string, kv ...any) string {
		var args map[string]string
		if len(kv) > 1 {
			args = make(map[string]string, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				k, _ := kv[i].(string)
				args[k] = toString(kv[i+1])
			}
		}
		return c.T(tag, key, args)
	}
}
