package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/userconsole/internal/api"
	"github.com/userconsole/internal/middleware"
	"github.com/userconsole/internal/view"
)

// UsersHandler serves the admin user table: listing with filters and
// pagination, and the activate/deactivate/delete actions behind the
// confirmation dialog.
type UsersHandler struct {
	BaseHandler
	api      *api.Client
	pageSize int
}

func NewUsersHandler(base BaseHandler, client *api.Client, pageSize int) *UsersHandler {
	return &UsersHandler{BaseHandler: base, api: client, pageSize: pageSize}
}

type adminPageData struct {
	baseData
	List    *view.UserList
	General string
}

// Page renders the table for the filters, page and pending confirmation
// encoded in the query string. Rows and pagination are replaced wholesale
// by the fetch result.
func (h *UsersHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	state := view.FromQuery(r.URL.Query(), h.pageSize)

	data := adminPageData{List: state}

	seq := state.BeginFetch()
	list, err := h.api.ListUsers(r.Context(), sess.Token, state.Query())
	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		h.Logger.Error("failed to list users", "err", err)
		data.General = "Failed to fetch users"
	} else {
		state.ApplyResult(seq, list)
	}

	data.baseData = h.base(w, r)
	h.render(w, "admin_users.html", data)
}

// Activate sets the target account active.
func (h *UsersHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, view.ActionActivate)
}

// Deactivate sets the target account inactive.
func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, view.ActionDeactivate)
}

// Delete removes the target account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, view.ActionDelete)
}

// act dispatches a confirmed action and returns to the same filters and
// page. The dialog is gone after the redirect regardless of outcome; the
// result is reported as a flash.
func (h *UsersHandler) act(w http.ResponseWriter, r *http.Request, action view.Action) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	sess := middleware.SessionFromContext(r.Context())
	returnTo := "/admin?" + returnQuery(r.PostForm).Encode()

	if action == view.ActionDelete && sess.User != nil && id == sess.User.ID {
		h.flash(w, "error", "Cannot delete your own account")
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
		return
	}

	var err error
	switch action {
	case view.ActionActivate:
		err = h.api.ActivateUser(r.Context(), sess.Token, id)
	case view.ActionDeactivate:
		err = h.api.DeactivateUser(r.Context(), sess.Token, id)
	case view.ActionDelete:
		err = h.api.DeleteUser(r.Context(), sess.Token, id)
	}

	if err != nil {
		if h.handleAuthError(w, r, err) {
			return
		}
		h.flash(w, "error", api.ErrorMessage(err, failureMessage(action)))
	} else {
		h.flash(w, "success", successMessage(action))
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// returnQuery rebuilds the list query from the confirmation form's hidden
// fields so the redirect lands on the same filters and page.
func returnQuery(form url.Values) url.Values {
	q := url.Values{}
	for _, key := range []string{"search", "status", "role", "page"} {
		if v := form.Get(key); v != "" {
			q.Set(key, v)
		}
	}
	return q
}

func successMessage(action view.Action) string {
	switch action {
	case view.ActionActivate:
		return "User activated successfully"
	case view.ActionDeactivate:
		return "User deactivated successfully"
	default:
		return "User deleted successfully"
	}
}

func failureMessage(action view.Action) string {
	switch action {
	case view.ActionActivate:
		return "Failed to activate user"
	case view.ActionDeactivate:
		return "Failed to deactivate user"
	default:
		return "Failed to delete user"
	}
}
