package circulation

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/form"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"go.uber.org/zap"
)

type Tab string

const (
	TabCreate  Tab = "create"
	TabReturn  Tab = "return"
	TabHistory Tab = "history"
)

func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabReturn, TabHistory:
		return Tab(s)
	default:
		return TabCreate
	}
}

type Loans interface {
	Borrow(ctx context.Context, form model.BorrowForm) (model.BorrowRecord, int, error)
	Return(ctx context.Context, recordID string) (model.BorrowRecord, int, error)
	Active(ctx context.Context, q model.LoanQuery) (model.LoanPage, int, error)
	History(ctx context.Context, q model.LoanQuery) (model.LoanPage, int, error)
	BorrowerNames(ctx context.Context) ([]string, int, error)
}

type Notifier interface {
	Push(kind toast.Kind, key string, args map[string]string) toast.Toast
}

// Query is the filter state of the loan views.
type Query struct {
	Search string
	Status model.LoanStatus
	Page   int
}

type LoanSnapshot = remotelist.Snapshot[Query, model.LoanPage]

// Session holds the three borrow/return views of one browser. The views do
// not share state; only the tenant comes from the signed-in identity.
type Session struct {
	create  *remotelist.List[catalog.Query, model.BookPage]
	active  *remotelist.List[Query, model.LoanPage]
	history *remotelist.List[Query, model.LoanPage]

	loans    Loans
	notify   Notifier
	identity session.Identity

	// the borrower index is built on the first suggestion request
	namesMu sync.Mutex
	names   *Suggester
	log      *zap.Logger
	now      func() time.Time
}

func NewSession(books catalog.Lister, loans Loans, notify Notifier, id session.Identity, log *zap.Logger, opts ...remotelist.Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	tenant, _ := id.CurrentTenant()

	lendable := func(ctx context.Context, q catalog.Query) (model.BookPage, error) {
		page, _, err := books.ListBooks(ctx, q.BookQuery())
		if err != nil {
			return model.BookPage{}, err
		}
		kept := make([]model.Book, 0, len(page.Books))
		for _, b := range page.Books {
			if (b.Status == "" || b.Status.Lendable()) && b.CopiesCount > 0 {
				kept = append(kept, b)
			}
		}
		page.Books = kept
		return page, nil
	}
	loanFetch := func(list func(context.Context, model.LoanQuery) (model.LoanPage, int, error)) remotelist.Fetcher[Query, model.LoanPage] {
		return func(ctx context.Context, q Query) (model.LoanPage, error) {
			page, _, err := list(ctx, model.LoanQuery{Page: q.Page, Search: q.Search, Status: q.Status, Company: tenant})
			return page, err
		}
	}

	company := tenant
	if company == "" {
		company = catalog.AllCompanies
	}
	return &Session{
		create:   remotelist.New(lendable, catalog.Query{Company: company, Page: 1}, opts...),
		active:   remotelist.New(loanFetch(loans.Active), Query{Page: 1}, opts...),
		history:  remotelist.New(loanFetch(loans.History), Query{Page: 1}, opts...),
		loans:    loans,
		notify:   notify,
		identity: id,
		log:      log,
		now:      time.Now,
	}
}

// EnsureLoaded starts the first fetch of the given view.
func (s *Session) EnsureLoaded(tab Tab) {
	switch tab {
	case TabReturn:
		if s.active.View().State == remotelist.Idle {
			s.active.Refresh()
		}
	case TabHistory:
		if s.history.View().State == remotelist.Idle {
			s.history.Refresh()
		}
	default:
		if s.create.View().State == remotelist.Idle {
			s.create.Refresh()
		}
	}
}

// SetSearch changes the search term of one view; debounced, back to page 1.
func (s *Session) SetSearch(tab Tab, term string) bool {
	if tab == TabCreate {
		return s.create.Update(func(q *catalog.Query) bool {
			if q.Search == term {
				return false
			}
			q.Search = term
			q.Page = 1
			return true
		}, true)
	}
	return s.loanList(tab).Update(func(q *Query) bool {
		if q.Search == term {
			return false
		}
		q.Search = term
		q.Page = 1
		return true
	}, true)
}

// SetStatus filters the history view by loan status; empty means any.
func (s *Session) SetStatus(status model.LoanStatus) bool {
	return s.history.Update(func(q *Query) bool {
		if q.Status == status {
			return false
		}
		q.Status = status
		q.Page = 1
		return true
	}, false)
}

func (s *Session) SetPage(tab Tab, n int) bool {
	if tab == TabCreate {
		n = clamp(n, s.create.View().Result.TotalPages)
		return s.create.Update(func(q *catalog.Query) bool {
			if q.Page == n {
				return false
			}
			q.Page = n
			return true
		}, false)
	}
	l := s.loanList(tab)
	n = clamp(n, l.View().Result.TotalPages)
	return l.Update(func(q *Query) bool {
		if q.Page == n {
			return false
		}
		q.Page = n
		return true
	}, false)
}

func (s *Session) CreateView() catalog.Snapshot {
	return s.create.View()
}

func (s *Session) LoanView(tab Tab) LoanSnapshot {
	return s.loanList(tab).View()
}

// Settle waits for the given view to resolve.
func (s *Session) Settle(ctx context.Context, tab Tab) error {
	var err error
	if tab == TabCreate {
		_, err = s.create.Settle(ctx)
	} else {
		_, err = s.loanList(tab).Settle(ctx)
	}
	return err
}

// NewBorrowForm prefills a loan of the given list entry, starting today and due in two weeks.
func (s *Session) NewBorrowForm(b model.Book) model.BorrowForm {
	bookID := b.GroupID
	if bookID == "" {
		bookID = b.ID
	}
	today := s.now()
	return model.BorrowForm{
		BookID:             bookID,
		CopyID:             b.ID,
		BorrowDate:         today.Format(time.DateOnly),
		ExpectedReturnDate: today.AddDate(0, 0, 14).Format(time.DateOnly),
	}
}

// Borrow registers a loan. On success the lendable and active views refresh.
func (s *Session) Borrow(ctx context.Context, f model.BorrowForm) (model.BorrowRecord, error) {
	if fields := form.Validate(f); len(fields) > 0 {
		s.notify.Push(toast.Error, "fillAllRequiredFields", nil)
		return model.BorrowRecord{}, &errs.ValidationError{Fields: fields}
	}
	rec, _, err := s.loans.Borrow(ctx, f)
	if err != nil {
		s.log.Warn("borrow", zap.String("copyId", f.CopyID), zap.Error(err))
		s.notify.Push(toast.Error, "borrowError", nil)
		return model.BorrowRecord{}, err
	}
	if err := s.names.Add(f.BorrowerName); err != nil {
		s.log.Warn("index borrower", zap.Error(err))
	}
	s.create.Refresh()
	s.active.Refresh()
	s.notify.Push(toast.Success, "borrowSuccess", nil)
	return rec, nil
}

// Return closes a loan. On success the active and history views refresh.
func (s *Session) Return(ctx context.Context, recordID string) (model.BorrowRecord, error) {
	rec, _, err := s.loans.Return(ctx, recordID)
	if err != nil {
		s.log.Warn("return", zap.String("recordId", recordID), zap.Error(err))
		s.notify.Push(toast.Error, "returnError", nil)
		return model.BorrowRecord{}, err
	}
	s.active.Refresh()
	s.history.Refresh()
	s.notify.Push(toast.Success, "returnSuccess", nil)
	return rec, nil
}

// LoadBorrowerNames fills the autocomplete index from the backend.
func (s *Session) LoadBorrowerNames(ctx context.Context) error {
	idx, err := s.suggester()
	if err != nil {
		return err
	}
	names, _, err := s.loans.BorrowerNames(ctx)
	if err != nil {
		return err
	}
	return idx.Add(names...)
}

func (s *Session) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	idx, err := s.suggester()
	if err != nil {
		return nil, err
	}
	if idx.Len() == 0 {
		if err := s.LoadBorrowerNames(ctx); err != nil {
			return nil, err
		}
	}
	return idx.Suggest(ctx, prefix, limit)
}

// HasSuggester reports whether the borrower index has been built.
func (s *Session) HasSuggester() bool {
	s.namesMu.Lock()
	defer s.namesMu.Unlock()
	return s.names != nil
}

func (s *Session) suggester() (*Suggester, error) {
	s.namesMu.Lock()
	defer s.namesMu.Unlock()
	if s.names == nil {
		idx, err := NewSuggester()
		if err != nil {
			return nil, err
		}
		s.names = idx
	}
	return s.names, nil
}

func (s *Session) Close() {
	s.create.Close()
	s.active.Close()
	s.history.Close()
	s.namesMu.Lock()
	defer s.namesMu.Unlock()
	if s.names == nil {
		return
	}
	if err := s.names.Close(); err != nil {
		s.log.Warn("close borrower index", zap.Error(err))
	}
	s.names = nil
}

func (s *Session) loanList(tab Tab) *remotelist.List[Query, model.LoanPage] {
	if tab == TabHistory {
		return s.history
	}
	return s.active
}

func clamp(n, total int) int {
	if total < 1 {
		total = 1
	}
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	return n
}
