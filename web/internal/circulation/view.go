package circulation

import (
	"time"

	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
)

type LoanRow struct {
	model.BorrowRecord
	Overdue bool
}

// LoanListView mirrors catalog.ListView for loan records.
type LoanListView struct {
	Rows        []LoanRow
	TotalPages  int
	CurrentPage int
	Loading     bool
	Error       string
	Empty       bool
	Pages       []catalog.PageLink
	PrevPage    int
	NextPage    int
}

func BuildLoanView(s LoanSnapshot, now time.Time) LoanListView {
	v := LoanListView{
		TotalPages:  s.Result.TotalPages,
		CurrentPage: s.Result.CurrentPage,
	}
	if v.CurrentPage < 1 {
		v.CurrentPage = s.Query.Page
	}
	switch {
	case s.State == remotelist.Loading || s.State == remotelist.Idle:
		v.Loading = true
		return v
	case s.State == remotelist.Errored:
		v.Error = "unknown error"
		if s.Err != nil {
			v.Error = s.Err.Error()
		}
		return v
	case len(s.Result.Records) == 0:
		v.Empty = true
		return v
	}
	for _, r := range s.Result.Records {
		v.Rows = append(v.Rows, LoanRow{BorrowRecord: r, Overdue: r.Overdue(now)})
	}
	for i := 1; i <= v.TotalPages; i++ {
		v.Pages = append(v.Pages, catalog.PageLink{Number: i, Current: i == v.CurrentPage})
	}
	if v.CurrentPage > 1 {
		v.PrevPage = v.CurrentPage - 1
	}
	if v.CurrentPage < v.TotalPages {
		v.NextPage = v.CurrentPage + 1
	}
	return v
}

// Statuses lists the history filter options.
func Statuses() []model.LoanStatus {
	return []model.LoanStatus{model.LoanBorrowed, model.LoanReturned, model.LoanOverdue}
}
