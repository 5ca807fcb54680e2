package circulation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/library-web/web/internal/circulation"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/Astemirdum/library-web/web/internal/toast"
	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBooks struct{}

func (fakeBooks) ListBooks(_ context.Context, q model.BookQuery) (model.BookPage, int, error) {
	return model.BookPage{
		Books: []model.Book{
			{ID: "c1", GroupID: "g1", Title: "Dune", Status: model.StatusAvailable, CopiesCount: 2, Company: q.Company},
			{ID: "c2", GroupID: "g1", Title: "Dune", Status: model.StatusBorrowed, CopiesCount: 2, Company: q.Company},
			{ID: "c3", GroupID: "g2", Title: "Emma", Status: model.StatusAvailable, CopiesCount: 0, Company: q.Company},
		},
		TotalPages:  1,
		CurrentPage: 1,
	}, 200, nil
}

type fakeLoans struct {
	mu        sync.Mutex
	active    []model.LoanQuery
	history   []model.LoanQuery
	borrowErr error
	names     []string
}

func (f *fakeLoans) Borrow(_ context.Context, form model.BorrowForm) (model.BorrowRecord, int, error) {
	if f.borrowErr != nil {
		return model.BorrowRecord{}, 500, f.borrowErr
	}
	return model.BorrowRecord{ID: "r1", CopyID: form.CopyID, BorrowerName: form.BorrowerName, Status: model.LoanBorrowed}, 201, nil
}

func (f *fakeLoans) Return(_ context.Context, id string) (model.BorrowRecord, int, error) {
	if id == "missing" {
		return model.BorrowRecord{}, 404, &errs.StatusError{Code: 404}
	}
	return model.BorrowRecord{ID: id, Status: model.LoanReturned}, 200, nil
}

func (f *fakeLoans) Active(_ context.Context, q model.LoanQuery) (model.LoanPage, int, error) {
	f.mu.Lock()
	f.active = append(f.active, q)
	f.mu.Unlock()
	return model.LoanPage{Records: []model.BorrowRecord{{ID: "r1", Status: model.LoanBorrowed}}, TotalPages: 2, CurrentPage: q.Page}, 200, nil
}

func (f *fakeLoans) History(_ context.Context, q model.LoanQuery) (model.LoanPage, int, error) {
	f.mu.Lock()
	f.history = append(f.history, q)
	f.mu.Unlock()
	return model.LoanPage{Records: []model.BorrowRecord{}, TotalPages: 0, CurrentPage: 1}, 200, nil
}

func (f *fakeLoans) BorrowerNames(context.Context) ([]string, int, error) {
	return f.names, 200, nil
}

func (f *fakeLoans) activeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

func tenantIdentity(t *testing.T) session.Identity {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"company": "acme", "username": "lib"}).SignedString([]byte("k"))
	require.NoError(t, err)
	return session.FromToken(token, time.Now())
}

func newSession(t *testing.T, loans *fakeLoans) (*circulation.Session, *toast.Queue) {
	t.Helper()
	q := toast.NewQueue()
	s := circulation.NewSession(fakeBooks{}, loans, q, tenantIdentity(t), zap.NewNop(), remotelist.WithDebounce(10*time.Millisecond))
	t.Cleanup(s.Close)
	return s, q
}

func settle(t *testing.T, s *circulation.Session, tab circulation.Tab) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Settle(ctx, tab))
}

func TestSession_CreateViewLendableOnly(t *testing.T) {
	s, _ := newSession(t, &fakeLoans{})
	s.EnsureLoaded(circulation.TabCreate)
	settle(t, s, circulation.TabCreate)

	snap := s.CreateView()
	require.Equal(t, "acme", snap.Query.Company)
	require.Len(t, snap.Result.Books, 1)
	require.Equal(t, "c1", snap.Result.Books[0].ID)
	require.Equal(t, "acme", snap.Result.Books[0].Company)
}

func TestSession_ViewsAreIndependent(t *testing.T) {
	loans := &fakeLoans{}
	s, _ := newSession(t, loans)

	require.True(t, s.SetSearch(circulation.TabReturn, "ana"))
	settle(t, s, circulation.TabReturn)
	require.Equal(t, "ana", s.LoanView(circulation.TabReturn).Query.Search)
	require.Empty(t, s.LoanView(circulation.TabHistory).Query.Search)
	require.Equal(t, remotelist.Idle, s.LoanView(circulation.TabHistory).State)

	require.True(t, s.SetStatus(model.LoanReturned))
	settle(t, s, circulation.TabHistory)
	loans.mu.Lock()
	require.Equal(t, model.LoanReturned, loans.history[0].Status)
	require.Equal(t, "acme", loans.history[0].Company)
	loans.mu.Unlock()

	v := circulation.BuildLoanView(s.LoanView(circulation.TabHistory), time.Now())
	require.True(t, v.Empty)
	require.Empty(t, v.Error)
}

func TestSession_SetPageClamped(t *testing.T) {
	s, _ := newSession(t, &fakeLoans{})
	s.EnsureLoaded(circulation.TabReturn)
	settle(t, s, circulation.TabReturn)

	require.True(t, s.SetPage(circulation.TabReturn, 9))
	require.Equal(t, 2, s.LoanView(circulation.TabReturn).Query.Page)
}

func TestSession_Borrow(t *testing.T) {
	loans := &fakeLoans{}
	s, q := newSession(t, loans)

	_, err := s.Borrow(context.Background(), model.BorrowForm{BookID: "g1", CopyID: "c1"})
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "required", verr.Fields["borrowerName"])
	require.Equal(t, "fillAllRequiredFields", q.Drain()[0].Key)

	form := s.NewBorrowForm(model.Book{ID: "c1", GroupID: "g1"})
	require.Equal(t, "g1", form.BookID)
	require.Equal(t, "c1", form.CopyID)
	form.BorrowerName = "Ana Pérez"

	rec, err := s.Borrow(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, "c1", rec.CopyID)
	require.Equal(t, "borrowSuccess", q.Drain()[0].Key)
	settle(t, s, circulation.TabReturn)
	require.Equal(t, 1, loans.activeCalls())

	names, err := s.Suggest(context.Background(), "pere", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"Ana Pérez"}, names)
}

func TestSession_BorrowFails(t *testing.T) {
	s, q := newSession(t, &fakeLoans{borrowErr: errors.New("copy already borrowed")})
	form := s.NewBorrowForm(model.Book{ID: "c1"})
	form.BorrowerName = "Ana"

	_, err := s.Borrow(context.Background(), form)
	require.Error(t, err)
	items := q.Drain()
	require.Equal(t, toast.Error, items[0].Kind)
	require.Equal(t, "borrowError", items[0].Key)
}

func TestSession_Return(t *testing.T) {
	loans := &fakeLoans{}
	s, q := newSession(t, loans)

	rec, err := s.Return(context.Background(), "r1")
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, rec.Status)
	require.Equal(t, "returnSuccess", q.Drain()[0].Key)
	settle(t, s, circulation.TabReturn)
	settle(t, s, circulation.TabHistory)
	require.Equal(t, remotelist.Ready, s.LoanView(circulation.TabHistory).State)

	_, err = s.Return(context.Background(), "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, "returnError", q.Drain()[0].Key)
}

func TestSession_SuggestLoadsNames(t *testing.T) {
	s, _ := newSession(t, &fakeLoans{names: []string{"Ana Pérez", "Andrés Gómez", "Bruno Díaz", "ana pérez"}})
	require.False(t, s.HasSuggester())

	names, err := s.Suggest(context.Background(), "an", 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Ana Pérez", "Andrés Gómez"}, names)

	names, err = s.Suggest(context.Background(), "ana pe", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"Ana Pérez"}, names)

	names, err = s.Suggest(context.Background(), "", 10)
	require.NoError(t, err)
	require.Empty(t, names)
	require.True(t, s.HasSuggester())
}

func TestBuildLoanView_Overdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := circulation.LoanSnapshot{
		State: remotelist.Ready,
		Query: circulation.Query{Page: 1},
		Result: model.LoanPage{
			Records: []model.BorrowRecord{
				{ID: "late", Status: model.LoanBorrowed, ExpectedReturnDate: now.AddDate(0, 0, -1)},
				{ID: "fine", Status: model.LoanBorrowed, ExpectedReturnDate: now.AddDate(0, 0, 3)},
			},
			TotalPages:  1,
			CurrentPage: 1,
		},
	}
	v := circulation.BuildLoanView(snap, now)
	require.Len(t, v.Rows, 2)
	require.True(t, v.Rows[0].Overdue)
	require.False(t, v.Rows[1].Overdue)
}

func TestParseTab(t *testing.T) {
	require.Equal(t, circulation.TabHistory, circulation.ParseTab("history"))
	require.Equal(t, circulation.TabCreate, circulation.ParseTab("bogus"))
}
