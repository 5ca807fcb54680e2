package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Astemirdum/library-web/web/internal/detail"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/form"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/Astemirdum/library-web/web/internal/workspace"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func detailStateFunc(ws *workspace.Workspace) func() any {
	return func() any { return ws.Detail.View() }
}

func (h *Handler) OpenBook(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	key := model.GroupKey{GroupID: c.FormValue("groupId"), ID: c.FormValue("id")}
	if key.GroupID == "" && key.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "groupId or id is required")
	}
	err = ws.Detail.Open(c.Request().Context(), key)
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) CloseBook(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ws.Detail.Close()
	return h.done(c, ws, "/", nil, detailStateFunc(ws))
}

func (h *Handler) SelectCopy(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	err = ws.Detail.SelectCopy(c.FormValue("copyId"))
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) SetCopiesPage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(c.FormValue("page"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page must be a number")
	}
	ws.Detail.SetCopiesPage(n)
	return h.done(c, ws, "/", nil, detailStateFunc(ws))
}

// CostInput filters a keystroke into the cost field; blur=1 also normalizes it.
func (h *Handler) CostInput(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	v := ws.Detail.SetCostInput(c.FormValue("cost"))
	if c.FormValue("blur") != "" {
		v = ws.Detail.BlurCost()
	}
	return h.done(c, ws, "/", nil, func() any {
		return map[string]string{"cost": v}
	})
}

func (h *Handler) ImageInput(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	img := ws.Detail.SetImageURL(c.FormValue("imageUrl"))
	return h.done(c, ws, "/", nil, func() any { return img })
}

func (h *Handler) RequestDeleteCopy(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	err = ws.Detail.RequestDeleteCopy(c.FormValue("copyId"))
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) RequestDeleteBook(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	err = ws.Detail.RequestDeleteBook()
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) CancelConfirm(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ws.Detail.CancelConfirm()
	return h.done(c, ws, "/", nil, detailStateFunc(ws))
}

// Confirm runs the delete the user was asked about.
func (h *Handler) Confirm(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	before := ws.Detail.View()
	err = ws.Detail.Confirm(c.Request().Context())
	if err == nil && before.Pending != nil && before.Book != nil {
		ev := model.UIEvent{BookID: before.Book.ID, GroupID: before.Book.GroupID}
		switch before.Pending.Kind {
		case detail.ConfirmDeleteCopy:
			ev.Action, ev.CopyID = actionDeleteCopy, before.Pending.ID
		case detail.ConfirmDeleteBook:
			ev.Action = actionDeleteBook
		}
		h.publish(ws, ev)
	}
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) UpdateGeneral(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var info model.GeneralInfo
	if err := c.Bind(&info); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = ws.Detail.UpdateGeneral(c.Request().Context(), info)
	if err == nil {
		h.publishBook(ws, actionUpdateGeneral, "")
	}
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) UpdateCopy(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var f model.CopyForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	copyID := c.Param("copyId")
	err = ws.Detail.UpdateCopy(c.Request().Context(), copyID, f)
	if err == nil {
		h.publishBook(ws, actionUpdateCopy, copyID)
	}
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) AddCopy(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var f model.CopyForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = ws.Detail.AddCopy(c.Request().Context(), f)
	if err == nil {
		h.publishBook(ws, actionAddCopy, "")
	}
	return h.done(c, ws, "/", err, detailStateFunc(ws))
}

func (h *Handler) publishBook(ws *workspace.Workspace, action, copyID string) {
	v := ws.Detail.View()
	ev := model.UIEvent{Action: action, CopyID: copyID}
	if v.Book != nil {
		ev.BookID, ev.GroupID = v.Book.ID, v.Book.GroupID
	}
	h.publish(ws, ev)
}

type createPage struct {
	Form       model.CreateBookForm
	Errors     map[string]string
	Categories []string
	Conditions []model.Condition
	CoverTypes []model.CoverType
}

func (h *Handler) newCreatePage(c echo.Context, f model.CreateBookForm, fields map[string]string) createPage {
	return createPage{
		Form:       f,
		Errors:     fields,
		Categories: h.facets(c.Request().Context(), false).Categories,
		Conditions: conditions,
		CoverTypes: coverTypes,
	}
}

func (h *Handler) CreatePage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var f model.CreateBookForm
	f.DateAcquired = h.now().Format(time.DateOnly)
	f.Condition = model.ConditionNew
	f.CoverType = model.CoverSoft
	return h.render(c, http.StatusOK, pageCreate, ws, h.newCreatePage(c, f, nil), false)
}

// CreateBook adds a group with its first copy under the signed-in tenant.
func (h *Handler) CreateBook(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var f model.CreateBookForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.Cost = form.NormalizeCost(form.FilterCost(f.Cost))
	f.Company, _ = ws.Identity.CurrentTenant()

	if fields := form.Validate(f); len(fields) > 0 {
		ws.Toasts.Push(toast.Error, "fillAllRequiredFields", nil)
		if wantsJSON(c) {
			return h.fail(c, ws, &errs.ValidationError{Fields: fields})
		}
		return h.render(c, http.StatusUnprocessableEntity, pageCreate, ws, h.newCreatePage(c, f, fields), false)
	}

	book, _, err := h.books.CreateBook(c.Request().Context(), f)
	if err != nil {
		h.log.Warn("create book", zap.String("title", f.Title), zap.Error(err))
		ws.Toasts.Push(toast.Error, "createBookError", nil)
		if wantsJSON(c) {
			return h.fail(c, ws, err)
		}
		return h.render(c, statusOf(err), pageCreate, ws, h.newCreatePage(c, f, nil), false)
	}

	ws.Catalog.Refresh()
	ws.Toasts.Push(toast.Success, "createBookSuccess", nil)
	h.publish(ws, model.UIEvent{Action: actionCreateBook, BookID: book.ID, GroupID: book.GroupID})
	return h.done(c, ws, "/", nil, func() any { return book })
}
