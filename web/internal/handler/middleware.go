package handler

import (
	"net/http"
	"strings"
	"time"

	pkgmw "github.com/Astemirdum/library-web/pkg/middleware"
	"github.com/Astemirdum/library-web/web/internal/i18n"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/Astemirdum/library-web/web/internal/workspace"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	workspaceKey = "workspace"
	localeKey    = "locale"
)

// withWorkspace resolves the browser's workspace from the ws cookie and the
// session token. The request context carries the token from here on.
func (h *Handler) withWorkspace(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id string
		if ck, err := c.Cookie(workspace.CookieName); err == nil {
			id = ck.Value
		}
		identity := session.FromToken(pkgmw.RawToken(c), time.Now())
		ws, err := h.store.Get(id, identity)
		if err != nil {
			h.log.Error("workspace", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "workspace unavailable")
		}
		if ws.ID != id {
			c.SetCookie(&http.Cookie{
				Name:     workspace.CookieName,
				Value:    ws.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(workspaceKey, ws)
		c.SetRequest(c.Request().WithContext(ws.Context(c.Request().Context())))
		return next(c)
	}
}

func (h *Handler) withLocale(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var cookie string
		if ck, err := c.Cookie(i18n.CookieName); err == nil {
			cookie = ck.Value
		}
		c.Set(localeKey, h.messages.Negotiate(cookie, c.Request().Header.Get("Accept-Language")))
		return next(c)
	}
}

// requireAuth sends anonymous browsers to the login page.
func (h *Handler) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := current(c)
		if err != nil {
			return err
		}
		if ws.Identity.IsAuthenticated() {
			return next(c)
		}
		if wantsJSON(c) {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		ws.Toasts.Push(toast.Warning, "loginRequired", nil)
		return c.Redirect(http.StatusSeeOther, "/login")
	}
}

func current(c echo.Context) (*workspace.Workspace, error) {
	ws, ok := c.Get(workspaceKey).(*workspace.Workspace)
	if !ok {
		return nil, errors.New("no workspace in context")
	}
	return ws, nil
}

func locale(c echo.Context) language.Tag {
	tag, _ := c.Get(localeKey).(language.Tag)
	return tag
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
