package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/userconsole/internal/handler"
	"github.com/userconsole/internal/middleware"
	"github.com/userconsole/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS)))

	// Health check
	r.Get("/api/health", handler.Health(app.db))

	base := handler.BaseHandler{
		Logger:        app.logger,
		Sessions:      app.sessions,
		Templates:     web.Templates,
		SecureCookies: app.config.SecureCookies,
	}
	authHandler := handler.NewAuthHandler(base, app.codec)

	// Every page resolves the session before rendering; there is no
	// window where a protected view renders unguarded.
	r.Group(func(r chi.Router) {
		r.Use(middleware.WithSession(app.sessions, app.codec))

		r.Get("/login", authHandler.LoginPage)
		r.Get("/signup", authHandler.SignupPage)

		limited := middleware.RateLimit(perMinute(app.config.RateLimitPerMinute), app.config.RateLimitPerMinute)
		r.With(limited).Post("/login", authHandler.Login)
		r.With(limited).Post("/signup", authHandler.Signup)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/logout", authHandler.Logout)

			profileHandler := handler.NewProfileHandler(base, app.client)
			r.Get("/profile", profileHandler.Page)
			r.Post("/profile/update", profileHandler.Update)
			r.Post("/profile/password", profileHandler.ChangePassword)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				usersHandler := handler.NewUsersHandler(base, app.client, app.config.AdminPageSize)
				r.Get("/admin", usersHandler.Page)
				r.Post("/admin/users/{id}/activate", usersHandler.Activate)
				r.Post("/admin/users/{id}/deactivate", usersHandler.Deactivate)
				r.Post("/admin/users/{id}/delete", usersHandler.Delete)
			})
		})
	})

	// Everything else lands on the login page
	redirect := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
	r.Get("/", redirect)
	r.NotFound(redirect)

	return r
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}
