package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/circulation"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/workspace"
	"github.com/labstack/echo/v4"
)

const suggestLimit = 8

type borrowPage struct {
	Tab      circulation.Tab
	Tabs     []circulation.Tab
	Search   string
	Status   model.LoanStatus
	Statuses []model.LoanStatus
	Books    catalog.ListView
	Loans    circulation.LoanListView
	Selected *model.Book
	Form     *model.BorrowForm
}

func borrowURL(tab circulation.Tab, copyID string) string {
	v := url.Values{"tab": {string(tab)}}
	if copyID != "" {
		v.Set("copy", copyID)
	}
	return "/admin/borrow-return?" + v.Encode()
}

func loanStateFunc(ws *workspace.Workspace, tab circulation.Tab, h *Handler) func() any {
	return func() any {
		if tab == circulation.TabCreate {
			return stateOf(ws.Circulation.CreateView(), false)
		}
		return circulation.BuildLoanView(ws.Circulation.LoanView(tab), h.now())
	}
}

// BorrowReturnPage renders one of the lend, return and history tabs.
// On the lend tab, ?copy= preselects a list entry and prefills the loan form.
func (h *Handler) BorrowReturnPage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	tab := circulation.ParseTab(c.QueryParam("tab"))
	ws.Circulation.EnsureLoaded(tab)
	wctx, cancel := h.wait(c.Request().Context())
	_ = ws.Circulation.Settle(wctx, tab)
	cancel()

	data := borrowPage{
		Tab:      tab,
		Tabs:     []circulation.Tab{circulation.TabCreate, circulation.TabReturn, circulation.TabHistory},
		Statuses: circulation.Statuses(),
	}
	var loading bool
	if tab == circulation.TabCreate {
		snap := ws.Circulation.CreateView()
		data.Search = snap.Query.Search
		data.Books = catalog.BuildListView(snap, false)
		loading = data.Books.Loading
		if b, ok := lendable(snap, c.QueryParam("copy")); ok {
			f := ws.Circulation.NewBorrowForm(b)
			data.Selected, data.Form = &b, &f
		}
	} else {
		snap := ws.Circulation.LoanView(tab)
		data.Search, data.Status = snap.Query.Search, snap.Query.Status
		data.Loans = circulation.BuildLoanView(snap, h.now())
		loading = data.Loans.Loading
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, data)
	}
	return h.render(c, http.StatusOK, pageBorrow, ws, data, loading)
}

func lendable(s catalog.Snapshot, id string) (model.Book, bool) {
	if id == "" {
		return model.Book{}, false
	}
	for _, b := range s.Result.Books {
		if b.ID == id {
			return b, true
		}
	}
	return model.Book{}, false
}

func (h *Handler) Borrow(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var f model.BorrowForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := ws.Circulation.Borrow(c.Request().Context(), f)
	if err != nil {
		return h.done(c, ws, borrowURL(circulation.TabCreate, f.CopyID), err, nil)
	}
	h.publish(ws, model.UIEvent{Action: actionBorrow, BookID: f.BookID, CopyID: f.CopyID})
	return h.done(c, ws, borrowURL(circulation.TabCreate, ""), nil, func() any { return rec })
}

func (h *Handler) Return(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	rec, err := ws.Circulation.Return(c.Request().Context(), c.Param("recordId"))
	if err == nil {
		h.publish(ws, model.UIEvent{Action: actionReturn, BookID: rec.BookID, CopyID: rec.CopyID})
	}
	return h.done(c, ws, borrowURL(circulation.TabReturn, ""), err, func() any { return rec })
}

func (h *Handler) SearchLoans(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	tab := circulation.ParseTab(c.FormValue("tab"))
	ws.Circulation.SetSearch(tab, c.FormValue("search"))
	return h.done(c, ws, borrowURL(tab, ""), nil, loanStateFunc(ws, tab, h))
}

func (h *Handler) SetLoanStatus(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	status := model.LoanStatus(c.FormValue("status"))
	if status != "" && !validLoanStatus(status) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown loan status")
	}
	ws.Circulation.SetStatus(status)
	return h.done(c, ws, borrowURL(circulation.TabHistory, ""), nil, loanStateFunc(ws, circulation.TabHistory, h))
}

func validLoanStatus(s model.LoanStatus) bool {
	for _, v := range circulation.Statuses() {
		if v == s {
			return true
		}
	}
	return false
}

func (h *Handler) SetLoansPage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	tab := circulation.ParseTab(c.FormValue("tab"))
	n, err := strconv.Atoi(c.FormValue("page"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be a number")
	}
	ws.Circulation.SetPage(tab, n)
	return h.done(c, ws, borrowURL(tab, ""), nil, loanStateFunc(ws, tab, h))
}

// SuggestBorrowers completes a borrower name from earlier loans.
func (h *Handler) SuggestBorrowers(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	names, err := ws.Circulation.Suggest(c.Request().Context(), c.QueryParam("q"), suggestLimit)
	if err != nil {
		return h.fail(c, ws, err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, names)
}
