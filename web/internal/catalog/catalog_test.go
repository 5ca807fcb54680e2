package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
	"github.com/Astemirdum/library-web/web/internal/session"
	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu      sync.Mutex
	queries []model.BookQuery
	respond func(q model.BookQuery) (model.BookPage, error)
}

func (f *fakeLister) ListBooks(_ context.Context, q model.BookQuery) (model.BookPage, int, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	page, err := f.respond(q)
	if err != nil {
		return model.BookPage{}, 500, err
	}
	return page, 200, nil
}

func (f *fakeLister) last() model.BookQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func (f *fakeLister) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func threePages(q model.BookQuery) (model.BookPage, error) {
	page := q.Page
	return model.BookPage{
		Books: []model.Book{
			{ID: "b1", GroupID: "g1", Title: "Dune", CopiesCount: 3, Status: model.StatusAvailable, Company: "acme"},
			{ID: "b2", GroupID: "g2", Title: "Emma", CopiesCount: 1, Status: model.StatusBorrowed, Company: "globex"},
			{ID: "b3", Title: "Ungrouped", CopiesCount: 1},
		},
		TotalPages:  3,
		CurrentPage: page,
	}, nil
}

func settle(t *testing.T, s *catalog.Session) catalog.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := s.Settle(ctx)
	require.NoError(t, err)
	return snap
}

func newSession(t *testing.T, l catalog.Lister, id session.Identity) *catalog.Session {
	t.Helper()
	s := catalog.NewSession(l, id, remotelist.WithDebounce(10*time.Millisecond))
	t.Cleanup(s.Close)
	return s
}

func TestSession_CategoriesNoDuplicatesKeepOrder(t *testing.T) {
	l := &fakeLister{respond: threePages}
	s := newSession(t, l, session.Anonymous())

	require.True(t, s.AddCategory("fantasy"))
	require.True(t, s.AddCategory("science"))
	require.False(t, s.AddCategory("fantasy"))
	require.True(t, s.AddCategory("history"))
	require.True(t, s.RemoveCategory("science"))
	require.False(t, s.RemoveCategory("poetry"))
	require.True(t, s.AddCategory("science"))
	snap := settle(t, s)

	require.Equal(t, []string{"fantasy", "history", "science"}, s.Query().Categories)
	require.Equal(t, "fantasy,history,science", snap.Query.BookQuery().Values().Get("categories"))
}

func TestSession_SearchResetsPage(t *testing.T) {
	l := &fakeLister{respond: threePages}
	s := newSession(t, l, session.Anonymous())
	s.EnsureLoaded()
	settle(t, s)

	require.True(t, s.SetPage(3))
	settle(t, s)
	require.Equal(t, 3, l.last().Page)

	require.True(t, s.SetSearchTerm("dune"))
	require.Equal(t, 1, s.Query().Page)
	settle(t, s)
	require.Equal(t, 1, l.last().Page)
	require.Equal(t, "dune", l.last().Search)
}

func TestSession_SearchDebounced(t *testing.T) {
	l := &fakeLister{respond: threePages}
	s := newSession(t, l, session.Anonymous())

	for _, term := range []string{"h", "ho", "hob"} {
		s.SetSearchTerm(term)
	}
	settle(t, s)
	require.Equal(t, 1, l.count())
	require.Equal(t, "hob", l.last().Search)
}

func TestSession_SetPageClamped(t *testing.T) {
	l := &fakeLister{respond: threePages}
	s := newSession(t, l, session.Anonymous())
	s.EnsureLoaded()
	settle(t, s)

	require.True(t, s.SetPage(10))
	require.Equal(t, 3, s.Query().Page)
	settle(t, s)
	require.True(t, s.SetPage(-2))
	require.Equal(t, 1, s.Query().Page)
	settle(t, s)
	require.False(t, s.SetPage(1))
}

func TestSession_Company(t *testing.T) {
	l := &fakeLister{respond: threePages}

	anon := newSession(t, l, session.Anonymous())
	require.Equal(t, catalog.AllCompanies, anon.Query().Company)
	require.True(t, anon.ShowCompany())
	anon.EnsureLoaded()
	settle(t, anon)
	require.False(t, l.last().Values().Has("company"))

	changed, err := anon.SetCompany("acme")
	require.NoError(t, err)
	require.True(t, changed)
	settle(t, anon)
	require.Equal(t, "acme", l.last().Company)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"company": "globex"}).SignedString([]byte("k"))
	require.NoError(t, err)
	user := newSession(t, l, session.FromToken(token, time.Now()))
	require.Equal(t, "globex", user.Query().Company)
	require.False(t, user.ShowCompany())
	_, err = user.SetCompany("acme")
	require.ErrorIs(t, err, errs.ErrCompanyLocked)
	require.Equal(t, "globex", user.Query().Company)
}

func TestListView_EmptyIsNotError(t *testing.T) {
	l := &fakeLister{respond: func(q model.BookQuery) (model.BookPage, error) {
		return model.BookPage{Books: []model.Book{}, TotalPages: 0, CurrentPage: 1}, nil
	}}
	s := newSession(t, l, session.Anonymous())
	s.SetSearchTerm("Hobbit")
	v := catalog.BuildListView(settle(t, s), true)

	require.True(t, v.Empty)
	require.Empty(t, v.Error)
	require.False(t, v.Loading)
	require.Empty(t, v.Cards)
}

func TestListView_ErrorIsNotEmpty(t *testing.T) {
	l := &fakeLister{respond: func(q model.BookQuery) (model.BookPage, error) {
		return model.BookPage{}, errors.New("connection refused")
	}}
	s := newSession(t, l, session.Anonymous())
	s.Refresh()
	v := catalog.BuildListView(settle(t, s), true)

	require.Equal(t, "connection refused", v.Error)
	require.False(t, v.Empty)
	require.Empty(t, v.Cards)
}

func TestListView_Grid(t *testing.T) {
	l := &fakeLister{respond: threePages}
	s := newSession(t, l, session.Anonymous())
	require.True(t, catalog.BuildListView(s.View(), true).Loading)

	s.EnsureLoaded()
	settle(t, s)
	s.SetPage(2)
	v := catalog.BuildListView(settle(t, s), true)

	require.Len(t, v.Cards, 3)
	require.Equal(t, "acme", v.Cards[0].Company)
	require.True(t, v.Cards[0].Available)
	require.False(t, v.Cards[1].Available)
	require.Equal(t, []catalog.PageLink{{Number: 1}, {Number: 2, Current: true}, {Number: 3}}, v.Pages)
	require.Equal(t, 1, v.PrevPage)
	require.Equal(t, 3, v.NextPage)

	hidden := catalog.BuildListView(s.View(), false)
	require.Empty(t, hidden.Cards[0].Company)
}

func TestSession_PatchAndRemoveSummary(t *testing.T) {
	l := &fakeLister{respond: threePages}
	s := newSession(t, l, session.Anonymous())
	s.EnsureLoaded()
	settle(t, s)

	two := 2
	borrowed := model.StatusBorrowed
	require.True(t, s.PatchSummary(model.GroupKey{GroupID: "g1", ID: "other"}, model.SummaryPatch{CopiesCount: &two, Status: &borrowed}))
	book := s.View().Result.Books[0]
	require.Equal(t, 2, book.CopiesCount)
	require.Equal(t, model.StatusBorrowed, book.Status)
	require.Equal(t, "Dune", book.Title)

	// no groupId on the card: matched by id
	require.True(t, s.RemoveSummary(model.GroupKey{ID: "b3"}))
	require.Len(t, s.View().Result.Books, 2)

	require.True(t, s.RemoveSummary(model.GroupKey{GroupID: "g2"}))
	for _, b := range s.View().Result.Books {
		require.NotEqual(t, "g2", b.GroupID)
	}
}

func TestSession_PatchOnlyTouchesCachedPage(t *testing.T) {
	l := &fakeLister{respond: func(q model.BookQuery) (model.BookPage, error) {
		if q.Page == 1 {
			return model.BookPage{Books: []model.Book{{ID: "p1", GroupID: "g-page1", CopiesCount: 1}}, TotalPages: 3, CurrentPage: 1}, nil
		}
		return model.BookPage{Books: []model.Book{{ID: "p2", GroupID: "g-page2", CopiesCount: 4}}, TotalPages: 3, CurrentPage: q.Page}, nil
	}}
	s := newSession(t, l, session.Anonymous())
	s.EnsureLoaded()
	settle(t, s)
	s.SetPage(2)
	before := settle(t, s).Result

	require.False(t, s.RemoveSummary(model.GroupKey{GroupID: "g-page1"}))
	require.Equal(t, before, s.View().Result)
}
