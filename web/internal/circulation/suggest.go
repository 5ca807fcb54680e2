package circulation

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const nameField = "name"

// Suggester autocompletes borrower names from an in-memory index. Matching is
// case and accent insensitive: "perez" finds "Ana Pérez".
type Suggester struct {
	mu    sync.RWMutex
	index bleve.Index
	names map[string]string
}

func NewSuggester() (*Suggester, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, errors.Wrap(err, "create borrower index")
	}
	return &Suggester{index: index, names: make(map[string]string)}, nil
}

func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = simple.Name
	nameMapping.Store = false
	doc.AddFieldMappingsAt(nameField, nameMapping)
	im.DefaultMapping = doc
	im.DefaultAnalyzer = simple.Name
	return im
}

// Add indexes names; duplicates (after folding) are kept once.
func (s *Suggester) Add(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()
	added := make(map[string]string, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		id := fold(name)
		if id == "" {
			continue
		}
		if _, ok := s.names[id]; ok {
			continue
		}
		if _, ok := added[id]; ok {
			continue
		}
		if err := batch.Index(id, map[string]string{nameField: id}); err != nil {
			return errors.Wrapf(err, "index %q", name)
		}
		added[id] = name
	}
	if len(added) == 0 {
		return nil
	}
	if err := s.index.Batch(batch); err != nil {
		return errors.Wrap(err, "index borrower names")
	}
	// only committed names count, so a failed load is retried
	for id, name := range added {
		s.names[id] = name
	}
	return nil
}

func (s *Suggester) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Suggest returns up to limit names whose words start with the typed words.
// The last word may also carry one typo once it has three letters.
func (s *Suggester) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	words := strings.Fields(fold(prefix))
	if len(words) == 0 || limit <= 0 {
		return nil, nil
	}

	parts := make([]query.Query, 0, len(words))
	for _, w := range words[:len(words)-1] {
		tq := bleve.NewPrefixQuery(w)
		tq.SetField(nameField)
		parts = append(parts, tq)
	}
	last := words[len(words)-1]
	pq := bleve.NewPrefixQuery(last)
	pq.SetField(nameField)
	pq.SetBoost(2.0)
	alternatives := []query.Query{pq}
	if len(last) >= 3 {
		fq := bleve.NewFuzzyQuery(last)
		fq.SetField(nameField)
		fq.SetFuzziness(1)
		fq.SetBoost(0.5)
		alternatives = append(alternatives, fq)
	}
	parts = append(parts, bleve.NewDisjunctionQuery(alternatives...))

	var q query.Query = parts[0]
	if len(parts) > 1 {
		q = bleve.NewConjunctionQuery(parts...)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	res, err := s.index.SearchInContext(ctx, bleve.NewSearchRequestOptions(q, limit, 0, false))
	if err != nil {
		return nil, errors.Wrap(err, "search borrower names")
	}
	out := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if name, ok := s.names[hit.ID]; ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Suggester) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// fold lowercases, strips accents and turns punctuation into spaces.
func fold(s string) string {
	s = norm.NFKD.String(s)
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		default:
			space = true
		}
	}
	return b.String()
}
