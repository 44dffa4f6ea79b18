package http

import (
	"log/slog"
	"net/http"
	"strings"
)

// RouterConfig wires handlers into the API. Nil handlers leave their routes
// unregistered. Sessions guards every non-public route.
type RouterConfig struct {
	Auth       *AuthHandler
	Bookings   *BookingHandler
	Rooms      *RoomHandler
	Users      *UserHandler
	Settings   *SettingsHandler
	Kiosk      *KioskHandler
	Sessions   SessionValidator
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	session := RequireSession(cfg.Sessions, cfg.Logger)
	admin := RequireAdmin(cfg.Logger)
	user := func(h http.HandlerFunc) http.Handler { return chain(h, session) }
	adminOnly := func(h http.HandlerFunc) http.Handler { return chain(h, session, admin) }

	mux.Handle("/health", dispatch(
		methodRoute{http.MethodGet, http.HandlerFunc(health)},
	))

	if cfg.Auth != nil {
		mux.Handle("/api/auth/register/send-code", dispatch(
			methodRoute{http.MethodPost, http.HandlerFunc(cfg.Auth.SendCode)},
		))
		mux.Handle("/api/auth/register/complete", dispatch(
			methodRoute{http.MethodPost, http.HandlerFunc(cfg.Auth.Complete)},
		))
		mux.Handle("/api/auth/login", dispatch(
			methodRoute{http.MethodPost, http.HandlerFunc(cfg.Auth.Login)},
		))
		mux.Handle("/api/auth/logout", dispatch(
			methodRoute{http.MethodPost, http.HandlerFunc(cfg.Auth.Logout)},
		))
		mux.Handle("/api/auth/me", dispatch(
			methodRoute{http.MethodGet, user(cfg.Auth.Me)},
		))
	}

	if cfg.Bookings != nil {
		mux.Handle("/api/bookings", dispatch(
			methodRoute{http.MethodGet, user(cfg.Bookings.ListDay)},
			methodRoute{http.MethodPost, user(cfg.Bookings.Create)},
		))
		mux.Handle("/api/bookings/", withResourceID("/api/bookings/", dispatch(
			methodRoute{http.MethodDelete, user(cfg.Bookings.Cancel)},
		)))
		mux.Handle("/api/admin/bookings", dispatch(
			methodRoute{http.MethodGet, adminOnly(cfg.Bookings.ListAll)},
		))
		mux.Handle("/api/calendar", dispatch(
			methodRoute{http.MethodGet, user(cfg.Bookings.Calendar)},
		))
	}

	if cfg.Rooms != nil {
		mux.Handle("/api/rooms", dispatch(
			methodRoute{http.MethodGet, user(cfg.Rooms.List)},
			methodRoute{http.MethodPost, adminOnly(cfg.Rooms.Create)},
		))
		mux.Handle("/api/rooms/", withResourceID("/api/rooms/", dispatch(
			methodRoute{http.MethodPatch, adminOnly(cfg.Rooms.Update)},
			methodRoute{http.MethodDelete, adminOnly(cfg.Rooms.Delete)},
		)))
	}

	if cfg.Settings != nil {
		mux.Handle("/api/settings", dispatch(
			methodRoute{http.MethodGet, user(cfg.Settings.Get)},
			methodRoute{http.MethodPatch, adminOnly(cfg.Settings.Update)},
		))
	}

	if cfg.Users != nil {
		mux.Handle("/api/users", dispatch(
			methodRoute{http.MethodGet, adminOnly(cfg.Users.List)},
		))
		mux.Handle("/api/users/", withResourceID("/api/users/", dispatch(
			methodRoute{http.MethodDelete, adminOnly(cfg.Users.Delete)},
		)))
	}

	if cfg.Kiosk != nil {
		mux.Handle("/api/kiosk", dispatch(
			methodRoute{http.MethodGet, http.HandlerFunc(cfg.Kiosk.Day)},
		))
		mux.Handle("/api/kiosk/rooms", dispatch(
			methodRoute{http.MethodGet, http.HandlerFunc(cfg.Kiosk.Rooms)},
		))
		mux.Handle("/api/kiosk/calendar.ics", dispatch(
			methodRoute{http.MethodGet, http.HandlerFunc(cfg.Kiosk.Calendar)},
		))
	}

	return chain(mux, cfg.Middleware...)
}

type methodRoute struct {
	method  string
	handler http.Handler
}

func dispatch(routes ...methodRoute) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, route := range routes {
			if r.Method == route.method {
				route.handler.ServeHTTP(w, r)
				return
			}
		}
		allowed := make([]string, 0, len(routes))
		for _, route := range routes {
			allowed = append(allowed, route.method)
		}
		methodNotAllowed(w, allowed...)
	})
}

// withResourceID resolves the single path segment after prefix into the
// request context.
func withResourceID(prefix string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
