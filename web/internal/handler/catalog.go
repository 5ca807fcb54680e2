package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/detail"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/workspace"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type catalogState struct {
	Query catalog.Query    `json:"query"`
	List  catalog.ListView `json:"list"`
}

type catalogPage struct {
	catalogState
	Facets        model.Facets
	ShowCompany   bool
	CompanyLocked bool
	AllCompanies  string
	Detail        detail.View
	Conditions    []model.Condition
	CopyStatuses  []model.CopyStatus
	CoverTypes    []model.CoverType
}

var (
	conditions   = []model.Condition{model.ConditionNew, model.ConditionGood, model.ConditionRegular, model.ConditionBad}
	copyStatuses = []model.CopyStatus{model.StatusAvailable, model.StatusBorrowed, model.StatusUnavailable}
	coverTypes   = []model.CoverType{model.CoverHard, model.CoverSoft}
)

func stateOf(s catalog.Snapshot, showCompany bool) catalogState {
	return catalogState{Query: s.Query, List: catalog.BuildListView(s, showCompany)}
}

func catalogStateFunc(ws *workspace.Workspace) func() any {
	return func() any {
		return stateOf(ws.Catalog.View(), ws.Catalog.ShowCompany())
	}
}

// CatalogPage renders the book grid with the detail panel of the open book.
func (h *Handler) CatalogPage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	ws.Catalog.EnsureLoaded()
	wctx, cancel := h.wait(ctx)
	snap, _ := ws.Catalog.Settle(wctx)
	cancel()

	showCompany := ws.Catalog.ShowCompany()
	state := stateOf(snap, showCompany)
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, struct {
			catalogState
			Detail detail.View `json:"detail"`
		}{state, ws.Detail.View()})
	}

	data := catalogPage{
		catalogState:  state,
		Facets:        h.facets(ctx, showCompany),
		ShowCompany:   showCompany,
		CompanyLocked: ws.Identity.IsAuthenticated(),
		AllCompanies:  catalog.AllCompanies,
		Detail:        ws.Detail.View(),
		Conditions:    conditions,
		CopyStatuses:  copyStatuses,
		CoverTypes:    coverTypes,
	}
	return h.render(c, http.StatusOK, pageCatalog, ws, data, state.List.Loading)
}

// facets loads the filter options. A failure leaves the list empty.
func (h *Handler) facets(ctx context.Context, withCompanies bool) model.Facets {
	var f model.Facets
	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		list, _, err := h.books.Categories(ctx)
		if err != nil {
			return errors.Wrap(err, "categories")
		}
		f.Categories = list
		return nil
	})
	if withCompanies {
		gg.Go(func() error {
			list, _, err := h.books.Companies(ctx)
			if err != nil {
				return errors.Wrap(err, "companies")
			}
			f.Companies = list
			return nil
		})
	}
	if err := gg.Wait(); err != nil {
		h.log.Warn("facets", zap.Error(err))
	}
	return f
}

func (h *Handler) SearchBooks(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ws.Catalog.SetSearchTerm(c.FormValue("search"))
	return h.done(c, ws, "/", nil, catalogStateFunc(ws))
}

func (h *Handler) SetCategories(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ws.Catalog.SetCategories(params["categories"])
	return h.done(c, ws, "/", nil, catalogStateFunc(ws))
}

func (h *Handler) AddCategory(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ws.Catalog.AddCategory(c.FormValue("category"))
	return h.done(c, ws, "/", nil, catalogStateFunc(ws))
}

func (h *Handler) RemoveCategory(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ws.Catalog.RemoveCategory(c.FormValue("category"))
	return h.done(c, ws, "/", nil, catalogStateFunc(ws))
}

func (h *Handler) SetCompany(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	_, err = ws.Catalog.SetCompany(c.FormValue("company"))
	return h.done(c, ws, "/", err, catalogStateFunc(ws))
}

func (h *Handler) SetBooksPage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(c.FormValue("page"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be a number")
	}
	ws.Catalog.SetPage(n)
	return h.done(c, ws, "/", nil, catalogStateFunc(ws))
}

func (h *Handler) RefreshBooks(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ws.Catalog.Refresh()
	return h.done(c, ws, "/", nil, catalogStateFunc(ws))
}
