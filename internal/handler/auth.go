package handler

import (
	"net/http"

	"github.com/userconsole/internal/api"
	"github.com/userconsole/internal/middleware"
	"github.com/userconsole/internal/session"
	"github.com/userconsole/internal/validate"
)

// AuthHandler serves the login and signup pages and drives the session
// manager on submission.
type AuthHandler struct {
	BaseHandler
	codec *session.CookieCodec
}

func NewAuthHandler(base BaseHandler, codec *session.CookieCodec) *AuthHandler {
	return &AuthHandler{BaseHandler: base, codec: codec}
}

type authPageData struct {
	baseData
	Form    map[string]string
	Errors  validate.Errors
	General string
}

// LoginPage renders the login form. Authenticated sessions are sent to
// their landing page instead.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess.IsAuthenticated() {
		http.Redirect(w, r, landingPath(sess), http.StatusSeeOther)
		return
	}
	h.render(w, "login.html", authPageData{
		baseData: h.base(w, r),
		Form:     map[string]string{},
		Errors:   validate.Errors{},
	})
}

// Login validates the form, authenticates against the backend and issues
// the session cookie. Validation failures never reach the network.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	form := map[string]string{"email": email}

	if errs := validate.Login(email, password); len(errs) > 0 {
		h.render(w, "login.html", authPageData{baseData: h.base(w, r), Form: form, Errors: errs})
		return
	}

	sess, err := h.Sessions.Login(r.Context(), email, password)
	if err != nil {
		h.render(w, "login.html", authPageData{
			baseData: h.base(w, r),
			Form:     form,
			Errors:   validate.Errors{},
			General:  api.ErrorMessage(err, "Login failed"),
		})
		return
	}

	h.setSessionCookie(w, h.codec.Encode(sess.ID))
	h.flash(w, "success", "Login successful!")
	http.Redirect(w, r, landingPath(sess), http.StatusSeeOther)
}

// SignupPage renders the registration form.
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess.IsAuthenticated() {
		http.Redirect(w, r, landingPath(sess), http.StatusSeeOther)
		return
	}
	h.render(w, "signup.html", authPageData{
		baseData: h.base(w, r),
		Form:     map[string]string{},
		Errors:   validate.Errors{},
	})
}

// Signup validates the form and registers the account. Success establishes
// an authenticated session immediately.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	fullName := r.PostFormValue("fullName")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")
	form := map[string]string{"fullName": fullName, "email": email}

	if errs := validate.Signup(fullName, email, password, confirm); len(errs) > 0 {
		h.render(w, "signup.html", authPageData{baseData: h.base(w, r), Form: form, Errors: errs})
		return
	}

	sess, err := h.Sessions.Signup(r.Context(), fullName, email, password)
	if err != nil {
		h.render(w, "signup.html", authPageData{
			baseData: h.base(w, r),
			Form:     form,
			Errors:   validate.Errors{},
			General:  api.ErrorMessage(err, "Signup failed"),
		})
		return
	}

	h.setSessionCookie(w, h.codec.Encode(sess.ID))
	h.flash(w, "success", "Account created successfully!")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// Logout invalidates the session server-side best-effort, always clears
// local state, and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		h.Sessions.Logout(r.Context(), sess)
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// landingPath is where a fresh session lands: admins on the dashboard,
// everyone else on their profile.
func landingPath(sess *session.Session) string {
	if sess.IsAdmin() {
		return "/admin"
	}
	return "/profile"
}
