package handler

import (
	"context"
	"net/http"
	"time"

	pkgmw "github.com/Astemirdum/library-web/pkg/middleware"
	"github.com/Astemirdum/library-web/pkg/validate"
	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/i18n"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/Astemirdum/library-web/web/internal/workspace"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// how long a page render waits for a pending list before showing it as loading
const defaultPageWait = 3 * time.Second

type Deps struct {
	Books    BooksService
	Users    UsersService
	Store    *workspace.Store
	Messages *i18n.Catalog
	Events   EventLog
}

type Handler struct {
	books    BooksService
	users    UsersService
	store    *workspace.Store
	messages *i18n.Catalog
	events   EventLog
	views    *renderer
	secure   bool
	pageWait time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func New(log *zap.Logger, cfg config.HTTPServer, d Deps) (*Handler, error) {
	views, err := newRenderer(d.Messages)
	if err != nil {
		return nil, err
	}
	events := d.Events
	if events == nil {
		events = nopEventLog{}
	}
	return &Handler{
		books:    d.Books,
		users:    d.Users,
		store:    d.Store,
		messages: d.Messages,
		events:   events,
		views:    views,
		secure:   cfg.SecureCookie,
		pageWait: defaultPageWait,
		log:      log,
		now:      time.Now,
	}, nil
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		webRPS  = 100
	)
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Validator = validate.NewCustomValidator()
	e.Renderer = h.views

	base := e.Group("", pkgmw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	web := e.Group("",
		middleware.RequestLoggerWithConfig(pkgmw.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		pkgmw.NewRateLimiter(webRPS),
		pkgmw.Token,
		h.withLocale,
		h.withWorkspace,
	)
	web.GET("/", h.CatalogPage)
	web.GET("/login", h.LoginPage)
	web.POST("/login", h.Login)
	web.GET("/signup", h.SignupPage)
	web.POST("/signup", h.Signup)
	web.POST("/logout", h.Logout)
	web.POST("/locale", h.SetLocale)
	web.POST("/toasts/dismiss", h.DismissToast)

	cat := web.Group("/catalog")
	cat.POST("/search", h.SearchBooks)
	cat.POST("/categories", h.SetCategories)
	cat.POST("/categories/add", h.AddCategory)
	cat.POST("/categories/remove", h.RemoveCategory)
	cat.POST("/company", h.SetCompany)
	cat.POST("/page", h.SetBooksPage)
	cat.POST("/refresh", h.RefreshBooks)

	books := web.Group("/books")
	books.POST("/open", h.OpenBook)
	books.POST("/close", h.CloseBook)
	books.POST("/copies/select", h.SelectCopy)
	books.POST("/copies/page", h.SetCopiesPage)
	books.POST("/cost", h.CostInput)
	books.POST("/image", h.ImageInput)

	edit := books.Group("", h.requireAuth)
	edit.POST("/delete-copy", h.RequestDeleteCopy)
	edit.POST("/delete-book", h.RequestDeleteBook)
	edit.POST("/cancel", h.CancelConfirm)
	edit.POST("/confirm", h.Confirm)
	edit.POST("/general", h.UpdateGeneral)
	edit.POST("/copies", h.AddCopy)
	edit.POST("/copies/:copyId", h.UpdateCopy)

	admin := web.Group("/admin", h.requireAuth)
	admin.GET("/create", h.CreatePage)
	admin.POST("/create", h.CreateBook)
	admin.GET("/borrow-return", h.BorrowReturnPage)

	loans := web.Group("/borrow", h.requireAuth)
	loans.POST("", h.Borrow)
	loans.POST("/return/:recordId", h.Return)
	loans.POST("/search", h.SearchLoans)
	loans.POST("/status", h.SetLoanStatus)
	loans.POST("/page", h.SetLoansPage)
	loans.GET("/suggest", h.SuggestBorrowers)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type page struct {
	Name     string
	Path     string
	Locale   string
	Locales  []string
	Identity session.Identity
	Toasts   []toast.Toast
	// Refresh asks the browser to reload while a list is still loading.
	Refresh bool
	Data    any
}

func (h *Handler) render(c echo.Context, code int, name string, ws *workspace.Workspace, data any, loading bool) error {
	supported := h.messages.Supported()
	locales := make([]string, 0, len(supported))
	for _, tag := range supported {
		locales = append(locales, tag.String())
	}
	return c.Render(code, name, page{
		Name:     name,
		Path:     c.Request().URL.RequestURI(),
		Locale:   locale(c).String(),
		Locales:  locales,
		Identity: ws.Identity,
		Toasts:   ws.Toasts.Drain(),
		Refresh:  loading,
		Data:     data,
	})
}

type intentResponse struct {
	State  any           `json:"state,omitempty"`
	Toasts []toast.Toast `json:"toasts,omitempty"`
}

type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Toasts  []toast.Toast     `json:"toasts,omitempty"`
}

// done answers an intent: a 303 back to the page for browsers, the resulting
// state for JSON clients.
func (h *Handler) done(c echo.Context, ws *workspace.Workspace, to string, err error, state func() any) error {
	notice(ws, err)
	if !wantsJSON(c) {
		return c.Redirect(http.StatusSeeOther, to)
	}
	if err != nil {
		return h.fail(c, ws, err)
	}
	resp := intentResponse{Toasts: ws.Toasts.Drain()}
	if state != nil {
		resp.State = state()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) fail(c echo.Context, ws *workspace.Workspace, err error) error {
	resp := errorResponse{Message: err.Error(), Toasts: ws.Toasts.Drain()}
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	return c.JSON(statusOf(err), resp)
}

// notice toasts the errors the sessions leave to the caller.
func notice(ws *workspace.Workspace, err error) {
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrBusy):
		ws.Toasts.Push(toast.Warning, "actionInProgress", nil)
	case errors.Is(err, errs.ErrCompanyLocked):
		ws.Toasts.Push(toast.Warning, "companyLocked", nil)
	}
}

func statusOf(err error) int {
	var (
		verr *errs.ValidationError
		serr *errs.StatusError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrCompanyLocked):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrCopyNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrNoSelection), errors.Is(err, errs.ErrNotConfirmed), errors.Is(err, errs.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &serr):
		return serr.Code
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) publish(ws *workspace.Workspace, ev model.UIEvent) {
	if ev.User == "" {
		ev.User = ws.Identity.UserName()
	}
	if ev.Company == "" {
		ev.Company, _ = ws.Identity.CurrentTenant()
	}
	ev.At = h.now().UTC()
	if err := h.events.Publish(ev); err != nil {
		h.log.Warn("publish event", zap.String("action", ev.Action), zap.Error(err))
	}
}

// wait bounds how long a page render waits for pending lists.
func (h *Handler) wait(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.pageWait)
}
