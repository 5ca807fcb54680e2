package handler

import (
	"net/http"
	"strings"

	pkgmw "github.com/Astemirdum/library-web/pkg/middleware"
	"github.com/Astemirdum/library-web/pkg/validate"
	"github.com/Astemirdum/library-web/web/internal/i18n"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const localeMaxAge = 365 * 24 * 60 * 60

type authPage struct {
	Email    string
	Username string
	Errors   map[string]string
}

func (h *Handler) LoginPage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	if ws.Identity.IsAuthenticated() {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return h.render(c, http.StatusOK, pageLogin, ws, authPage{}, false)
}

// Login exchanges credentials for a token kept in the token cookie. The next
// request rebuilds the workspace for the new identity.
func (h *Handler) Login(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var f model.LoginForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(f); err != nil {
		fields := validate.Fields(err)
		return h.render(c, http.StatusUnprocessableEntity, pageLogin, ws, authPage{Email: f.Email, Errors: fields}, false)
	}

	resp, _, err := h.users.Login(c.Request().Context(), f)
	if err != nil {
		h.log.Info("login rejected", zap.String("email", f.Email), zap.Error(err))
		ws.Toasts.Push(toast.Error, "loginError", nil)
		if wantsJSON(c) {
			return h.fail(c, ws, err)
		}
		return h.render(c, statusOf(err), pageLogin, ws, authPage{Email: f.Email}, false)
	}

	pkgmw.SetTokenCookie(c, resp.Token, h.secure)
	ws.Toasts.Push(toast.Success, "loginSuccess", nil)
	id := session.FromToken(resp.Token, h.now())
	tenant, _ := id.CurrentTenant()
	h.publish(ws, model.UIEvent{Action: actionLogin, User: id.UserName(), Company: tenant})
	return h.done(c, ws, "/", nil, func() any { return resp })
}

func (h *Handler) SignupPage(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, pageSignup, ws, authPage{}, false)
}

func (h *Handler) Signup(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	var f model.SignupForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(f); err != nil {
		fields := validate.Fields(err)
		return h.render(c, http.StatusUnprocessableEntity, pageSignup, ws,
			authPage{Email: f.Email, Username: f.Username, Errors: fields}, false)
	}

	if _, _, err := h.users.Signup(c.Request().Context(), f); err != nil {
		h.log.Info("signup rejected", zap.String("email", f.Email), zap.Error(err))
		ws.Toasts.Push(toast.Error, "signupError", nil)
		if wantsJSON(c) {
			return h.fail(c, ws, err)
		}
		return h.render(c, statusOf(err), pageSignup, ws, authPage{Email: f.Email, Username: f.Username}, false)
	}

	ws.Toasts.Push(toast.Success, "signupSuccess", nil)
	h.publish(ws, model.UIEvent{Action: actionSignup, User: f.Username})
	return h.done(c, ws, "/login", nil, nil)
}

func (h *Handler) Logout(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	pkgmw.ClearTokenCookie(c)
	return h.done(c, ws, "/login", nil, nil)
}

// SetLocale stores the chosen language and returns to the page it came from.
func (h *Handler) SetLocale(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	tag, ok := h.messages.Match(c.FormValue("locale"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported locale")
	}
	c.SetCookie(&http.Cookie{
		Name:     i18n.CookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   localeMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
	return h.done(c, ws, localPath(c.FormValue("next")), nil, func() any {
		return map[string]string{"locale": tag.String()}
	})
}

func (h *Handler) DismissToast(c echo.Context) error {
	ws, err := current(c)
	if err != nil {
		return err
	}
	ws.Toasts.Dismiss(c.FormValue("id"))
	return h.done(c, ws, localPath(c.FormValue("next")), nil, nil)
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
