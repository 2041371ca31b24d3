package handler

import (
	"net/http"

	"github.com/userconsole/internal/api"
	"github.com/userconsole/internal/middleware"
	"github.com/userconsole/internal/validate"
)

// ProfileHandler serves the self-service profile editor and the
// change-password form.
type ProfileHandler struct {
	BaseHandler
	api *api.Client
}

func NewProfileHandler(base BaseHandler, client *api.Client) *ProfileHandler {
	return &ProfileHandler{BaseHandler: base, api: client}
}

type profilePageData struct {
	baseData
	Form    map[string]string
	Errors  validate.Errors
	General string
}

func (h *ProfileHandler) page(w http.ResponseWriter, r *http.Request, form map[string]string, errs validate.Errors, general string) profilePageData {
	data := profilePageData{
		baseData: h.base(w, r),
		Form:     form,
		Errors:   errs,
		General:  general,
	}
	if form == nil {
		data.Form = map[string]string{
			"fullName": data.User.FullName,
			"email":    data.User.Email,
		}
	}
	if errs == nil {
		data.Errors = validate.Errors{}
	}
	return data
}

// Page renders the profile view prefilled from the session user.
func (h *ProfileHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, "profile.html", h.page(w, r, nil, nil, ""))
}

// Update validates and submits the profile edit, then writes the fresh
// user record through the session manager so session state stays
// consistent without a re-fetch.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	fullName := r.PostFormValue("fullName")
	email := r.PostFormValue("email")
	form := map[string]string{"fullName": fullName, "email": email}

	if errs := validate.Profile(fullName, email); len(errs) > 0 {
		h.render(w, "profile.html", h.page(w, r, form, errs, ""))
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	user, err := h.api.UpdateProfile(r.Context(), sess.Token, fullName, email)
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		h.render(w, "profile.html", h.page(w, r, form, nil, api.ErrorMessage(err, "Failed to update profile")))
		return
	}

	if err := h.Sessions.UpdateUser(r.Context(), sess, user); err != nil {
		h.Logger.Error("failed to persist updated user", "err", err)
	}

	h.flash(w, "success", "Profile updated successfully")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// ChangePassword validates and submits the password change.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	current := r.PostFormValue("currentPassword")
	newPassword := r.PostFormValue("newPassword")
	confirm := r.PostFormValue("confirmNewPassword")

	if errs := validate.ChangePassword(current, newPassword, confirm); len(errs) > 0 {
		h.render(w, "profile.html", h.page(w, r, nil, errs, ""))
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	if err := h.api.ChangePassword(r.Context(), sess.Token, current, newPassword); err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		h.render(w, "profile.html", h.page(w, r, nil, nil, api.ErrorMessage(err, "Failed to change password")))
		return
	}

	h.flash(w, "success", "Password changed successfully")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
