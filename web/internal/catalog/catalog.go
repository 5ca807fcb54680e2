package catalog

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
	"github.com/Astemirdum/library-web/web/internal/session"
)

// AllCompanies is the company filter value meaning "every tenant".
const AllCompanies = "all"

type Query struct {
	Search     string
	Categories []string
	Company    string
	Page       int
}

// BookQuery is the backend form of q; the AllCompanies sentinel is not sent.
func (q Query) BookQuery() model.BookQuery {
	bq := model.BookQuery{
		Page:       q.Page,
		Search:     q.Search,
		Categories: q.Categories,
	}
	if q.Company != AllCompanies {
		bq.Company = q.Company
	}
	return bq
}

func (q Query) HasCategory(c string) bool {
	for _, v := range q.Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Lister interface {
	ListBooks(ctx context.Context, q model.BookQuery) (model.BookPage, int, error)
}

type Snapshot = remotelist.Snapshot[Query, model.BookPage]

// Session is the catalog browsing state of one browser.
type Session struct {
	list     *remotelist.List[Query, model.BookPage]
	identity session.Identity
}

func NewSession(svc Lister, id session.Identity, opts ...remotelist.Option) *Session {
	company := AllCompanies
	if tenant, ok := id.CurrentTenant(); ok {
		company = tenant
	}
	fetch := func(ctx context.Context, q Query) (model.BookPage, error) {
		page, _, err := svc.ListBooks(ctx, q.BookQuery())
		return page, err
	}
	return &Session{
		list:     remotelist.New(fetch, Query{Company: company, Page: 1}, opts...),
		identity: id,
	}
}

// EnsureLoaded starts the first fetch if none happened yet.
func (s *Session) EnsureLoaded() {
	if s.list.View().State == remotelist.Idle {
		s.list.Refresh()
	}
}

// SetSearchTerm replaces the term and goes back to page 1. The fetch is debounced.
func (s *Session) SetSearchTerm(v string) bool {
	return s.list.Update(func(q *Query) bool {
		if q.Search == v {
			return false
		}
		q.Search = v
		q.Page = 1
		return true
	}, true)
}

func (s *Session) AddCategory(c string) bool {
	c = strings.TrimSpace(c)
	if c == "" {
		return false
	}
	return s.list.Update(func(q *Query) bool {
		if q.HasCategory(c) {
			return false
		}
		q.Categories = append(append(make([]string, 0, len(q.Categories)+1), q.Categories...), c)
		q.Page = 1
		return true
	}, false)
}

func (s *Session) RemoveCategory(c string) bool {
	return s.list.Update(func(q *Query) bool {
		if !q.HasCategory(c) {
			return false
		}
		next := make([]string, 0, len(q.Categories))
		for _, v := range q.Categories {
			if v != c {
				next = append(next, v)
			}
		}
		q.Categories = next
		q.Page = 1
		return true
	}, false)
}

// SetCategories replaces the whole selection, keeping first-seen order.
func (s *Session) SetCategories(cs []string) bool {
	next := make([]string, 0, len(cs))
	seen := make(map[string]bool, len(cs))
	for _, c := range cs {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		next = append(next, c)
	}
	return s.list.Update(func(q *Query) bool {
		if equal(q.Categories, next) {
			return false
		}
		q.Categories = next
		q.Page = 1
		return true
	}, false)
}

// SetCompany changes the tenant filter. Signed-in users are pinned to their own tenant.
func (s *Session) SetCompany(v string) (bool, error) {
	if s.identity.IsAuthenticated() {
		return false, errs.ErrCompanyLocked
	}
	if v == "" {
		v = AllCompanies
	}
	return s.list.Update(func(q *Query) bool {
		if q.Company == v {
			return false
		}
		q.Company = v
		q.Page = 1
		return true
	}, false), nil
}

// SetPage moves to page n clamped to [1, totalPages] of the last backend answer.
func (s *Session) SetPage(n int) bool {
	total := s.list.View().Result.TotalPages
	if total < 1 {
		total = 1
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	return s.list.Update(func(q *Query) bool {
		if q.Page == n {
			return false
		}
		q.Page = n
		return true
	}, false)
}

func (s *Session) Refresh() {
	s.list.Refresh()
}

func (s *Session) Query() Query {
	return s.list.Query()
}

func (s *Session) View() Snapshot {
	return s.list.View()
}

func (s *Session) Settle(ctx context.Context) (Snapshot, error) {
	return s.list.Settle(ctx)
}

// ShowCompany reports whether cards should name their tenant.
func (s *Session) ShowCompany() bool {
	return s.list.Query().Company == AllCompanies
}

func (s *Session) Identity() session.Identity {
	return s.identity
}

// PatchSummary writes copiesCount/status/condition into the cached card
// matching key. Cards on other pages are not touched.
func (s *Session) PatchSummary(key model.GroupKey, patch model.SummaryPatch) bool {
	return s.list.Patch(func(page *model.BookPage) bool {
		patched := false
		for i := range page.Books {
			if key.Matches(page.Books[i]) {
				patch.Apply(&page.Books[i])
				patched = true
			}
		}
		return patched
	})
}

// RemoveSummary drops the cached card matching key.
func (s *Session) RemoveSummary(key model.GroupKey) bool {
	return s.list.Patch(func(page *model.BookPage) bool {
		kept := make([]model.Book, 0, len(page.Books))
		for _, b := range page.Books {
			if !key.Matches(b) {
				kept = append(kept, b)
			}
		}
		removed := len(kept) != len(page.Books)
		page.Books = kept
		return removed
	})
}

func (s *Session) Close() {
	s.list.Close()
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
