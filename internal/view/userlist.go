// Package view holds the admin table's view state: filters, pagination,
// fetched rows and the destructive-action confirmation dialog. The type is
// pure state; fetching is the caller's job.
package view

import (
	"net/url"
	"strconv"

	"github.com/userconsole/internal/model"
)

// Action is a destructive admin operation gated behind the confirm dialog.
type Action string

const (
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
	ActionDelete     Action = "delete"
)

// ParseAction validates an action name from untrusted input.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionActivate, ActionDeactivate, ActionDelete:
		return Action(s), true
	}
	return "", false
}

// Filters are the admin table's filter criteria. Empty string means no
// filter on that field.
type Filters struct {
	Search string
	Status string
	Role   string
}

// Confirm models a single in-flight destructive-action confirmation.
type Confirm struct {
	Show     bool
	Action   Action
	UserID   string
	UserName string
}

// UserList is the admin table's state machine. Rows and pagination are
// fully replaced by each fetch result; a sequence counter guards against a
// superseded fetch overwriting newer state.
type UserList struct {
	Filters    Filters
	Pagination model.Pagination
	Rows       []model.User
	Confirm    Confirm

	seq uint64
}

// NewUserList returns empty state on page 1 with the given page size.
func NewUserList(limit int) *UserList {
	return &UserList{
		Pagination: model.Pagination{CurrentPage: 1, TotalPages: 1, Limit: limit},
	}
}

// SetFilter updates one filter field and resets the page to 1. Unknown
// field names are ignored.
func (u *UserList) SetFilter(field, value string) {
	switch field {
	case "search":
		u.Filters.Search = value
	case "status":
		u.Filters.Status = value
	case "role":
		u.Filters.Role = value
	default:
		return
	}
	u.Pagination.CurrentPage = 1
}

// ClearFilters resets every filter field and returns to page 1.
func (u *UserList) ClearFilters() {
	u.Filters = Filters{}
	u.Pagination.CurrentPage = 1
}

// ChangePage moves to page n. Out-of-range values are a no-op, matching
// the Previous/Next controls being disabled at the boundaries.
func (u *UserList) ChangePage(n int) {
	if n < 1 || n > u.Pagination.TotalPages {
		return
	}
	u.Pagination.CurrentPage = n
}

// BeginFetch issues a fetch ticket. Only the most recently issued ticket's
// result is accepted by ApplyResult.
func (u *UserList) BeginFetch() uint64 {
	u.seq++
	return u.seq
}

// ApplyResult installs a fetch result, replacing rows and pagination with
// the server's copy verbatim. Results from superseded fetches are
// discarded and false is returned.
func (u *UserList) ApplyResult(seq uint64, list *model.UserList) bool {
	if seq != u.seq {
		return false
	}
	u.Rows = list.Users
	u.Pagination = list.Pagination
	return true
}

// RequestAction opens the confirmation dialog. Server state is untouched
// until the action is confirmed.
func (u *UserList) RequestAction(action Action, userID, userName string) {
	u.Confirm = Confirm{Show: true, Action: action, UserID: userID, UserName: userName}
}

// CloseConfirm dismisses the dialog. The dialog closes after a confirmed
// action settles regardless of outcome; failures surface as notifications.
func (u *UserList) CloseConfirm() {
	u.Confirm = Confirm{}
}

// HasPrev reports whether the Previous control is enabled.
func (u *UserList) HasPrev() bool {
	return u.Pagination.CurrentPage > 1
}

// HasNext reports whether the Next control is enabled.
func (u *UserList) HasNext() bool {
	return u.Pagination.CurrentPage < u.Pagination.TotalPages
}

// Query builds the list request parameters for the current state. Filters
// are included only when set.
func (u *UserList) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(u.Pagination.CurrentPage))
	q.Set("limit", strconv.Itoa(u.Pagination.Limit))
	if u.Filters.Search != "" {
		q.Set("search", u.Filters.Search)
	}
	if u.Filters.Status != "" {
		q.Set("status", u.Filters.Status)
	}
	if u.Filters.Role != "" {
		q.Set("role", u.Filters.Role)
	}
	return q
}

// PageQuery returns the query string addressing the current filters and
// page, used to build links that return to this exact view.
func (u *UserList) PageQuery() string {
	return u.Query().Encode()
}

// PrevQuery addresses the previous page with the current filters.
func (u *UserList) PrevQuery() string {
	q := u.Query()
	q.Set("page", strconv.Itoa(u.Pagination.CurrentPage-1))
	return q.Encode()
}

// NextQuery addresses the next page with the current filters.
func (u *UserList) NextQuery() string {
	q := u.Query()
	q.Set("page", strconv.Itoa(u.Pagination.CurrentPage+1))
	return q.Encode()
}

// ConfirmQuery addresses the current view with the confirmation dialog
// open for the given action and target. Takes the action as a plain string
// so templates can call it directly.
func (u *UserList) ConfirmQuery(action, userID, userName string) string {
	q := u.Query()
	q.Set("confirm", action)
	q.Set("id", userID)
	q.Set("name", userName)
	return q.Encode()
}

// FromQuery reconstructs table state from request query parameters. Filter
// values outside the allowed sets are dropped rather than forwarded.
func FromQuery(q url.Values, limit int) *UserList {
	u := NewUserList(limit)

	if s := q.Get("status"); s == string(model.StatusActive) || s == string(model.StatusInactive) {
		u.Filters.Status = s
	}
	if r := q.Get("role"); r == string(model.RoleUser) || r == string(model.RoleAdmin) {
		u.Filters.Role = r
	}
	u.Filters.Search = q.Get("search")

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page >= 1 {
		u.Pagination.CurrentPage = page
		// TotalPages is unknown until the fetch lands; trust the requested
		// page and let the server clamp.
		u.Pagination.TotalPages = page
	}

	if action, ok := ParseAction(q.Get("confirm")); ok && q.Get("id") != "" {
		u.RequestAction(action, q.Get("id"), q.Get("name"))
	}
	return u
}
