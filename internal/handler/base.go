package handler

import (
	"encoding/base64"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/userconsole/internal/api"
	"github.com/userconsole/internal/middleware"
	"github.com/userconsole/internal/model"
	"github.com/userconsole/internal/session"
)

const flashCookieName = "flash"

// Flash is a one-shot notification rendered by the next page load.
type Flash struct {
	Kind    string // success, error
	Message string
}

// BaseHandler carries what every page handler needs: the template set, the
// session manager for the global authorization-failure path, and cookie
// settings.
type BaseHandler struct {
	Logger        *slog.Logger
	Sessions      *session.Manager
	Templates     *template.Template
	SecureCookies bool
}

// baseData is the part of every page's template data that comes from the
// session and the flash cookie.
type baseData struct {
	User    *model.User
	IsAdmin bool
	Flash   *Flash
}

func (h *BaseHandler) base(w http.ResponseWriter, r *http.Request) baseData {
	sess := middleware.SessionFromContext(r.Context())
	data := baseData{Flash: h.takeFlash(w, r)}
	if sess.IsAuthenticated() {
		data.User = sess.User
		data.IsAdmin = sess.IsAdmin()
	}
	return data
}

func (h *BaseHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Templates.ExecuteTemplate(w, name, data); err != nil {
		h.Logger.Error("template error", "template", name, "err", err)
	}
}

// handleAuthError implements the global 401 rule: any authorization failure
// from any call destroys the durable session and redirects to the login
// page. Returns true when err was handled that way.
func (h *BaseHandler) handleAuthError(w http.ResponseWriter, r *http.Request, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		h.Sessions.Destroy(r.Context(), sess.ID)
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

func (h *BaseHandler) setSessionCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(session.TTL),
	})
}

func (h *BaseHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    middleware.SessionCookieName,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}

func (h *BaseHandler) flash(w http.ResponseWriter, kind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *BaseHandler) takeFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:    flashCookieName,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})

	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}
