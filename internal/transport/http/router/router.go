package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/church-service/internal/pkg/metrics"
	"github.com/baechuer/church-service/internal/transport/http/handlers"
	"github.com/baechuer/church-service/internal/transport/http/middleware"
	"github.com/baechuer/church-service/internal/transport/http/response"
)

// JSON bodies are small; multipart event creation sets its own larger limit.
const maxJSONBody = 1 << 20

type Handlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Prayer     *handlers.PrayerHandler
	Events     *handlers.EventsHandler
	Contact    *handlers.ContactHandler
	Newsletter *handlers.NewsletterHandler
	Sermons    *handlers.SermonHandler
	Dashboard  *handlers.DashboardHandler
}

type Options struct {
	Verifier     middleware.TokenVerifier
	LoginLimiter middleware.RateLimiter
	LoginLimit   int
	LoginWindow  time.Duration
	PublicLimit  int
	PublicWindow time.Duration
	CORSOrigin   string
	// UploadDir is served under /uploads when images are kept on local disk.
	UploadDir string
}

// route is one row of the route table. Cap empty means public; Limited adds
// the per-IP limit for anonymous writes.
type route struct {
	Method  string
	Pattern string
	Cap     middleware.Capability
	Limited bool
	Handler http.HandlerFunc
}

func routes(h Handlers) []route {
	return []route{
		{http.MethodGet, "/health", "", false, h.Health.Health},

		{http.MethodPost, "/prayer-requests", "", true, h.Prayer.Submit},
		{http.MethodGet, "/prayer-requests", CapPrayerRead, false, h.Prayer.List},
		{http.MethodPatch, "/prayer-requests/{id}", CapPrayerWrite, false, h.Prayer.MarkAnswered},

		{http.MethodGet, "/events", "", false, h.Events.List},
		{http.MethodGet, "/events/{id}", "", false, h.Events.Get},
		{http.MethodPost, "/events", CapEventsWrite, false, h.Events.Create},
		{http.MethodDelete, "/events/{id}", CapEventsWrite, false, h.Events.Delete},
		{http.MethodPost, "/events/{id}/register", "", true, h.Events.Register},

		{http.MethodPost, "/contact", "", true, h.Contact.Submit},
		{http.MethodGet, "/contact", CapContactRead, false, h.Contact.List},
		{http.MethodPatch, "/contact/{id}", CapContactWrite, false, h.Contact.SetStatus},

		{http.MethodPost, "/newsletter/subscribe", "", true, h.Newsletter.Subscribe},
		{http.MethodPost, "/newsletter/unsubscribe", "", true, h.Newsletter.Unsubscribe},

		{http.MethodGet, "/sermons", "", false, h.Sermons.List},
		{http.MethodGet, "/sermons/{id}", "", false, h.Sermons.Get},
		{http.MethodPost, "/sermons", CapSermonsWrite, false, h.Sermons.Create},

		{http.MethodPost, "/auth/register", CapUsersWrite, false, h.Auth.Register},
		{http.MethodGet, "/auth/me", CapSelf, false, h.Auth.Me},
		{http.MethodPatch, "/auth/users/{id}/deactivate", CapUsersWrite, false, h.Auth.Deactivate},

		{http.MethodGet, "/dashboard/stats", CapDashboardRead, false, h.Dashboard.Stats},
	}
}

func New(h Handlers, opt Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(opt.CORSOrigin))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Fail(w, http.StatusNotFound, "not_found", "route not found", nil, response.RequestID(req))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil, response.RequestID(req))
	})

	gate := middleware.NewGate(opt.Verifier, Capabilities)
	public := passthrough
	if opt.PublicLimit > 0 {
		public = httprate.LimitByIP(opt.PublicLimit, opt.PublicWindow)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(bodyLimit)
		for _, rt := range routes(h) {
			var hh http.Handler = rt.Handler
			if rt.Cap != "" {
				hh = gate.Require(rt.Cap)(hh)
			}
			if rt.Limited {
				hh = public(hh)
			}
			api.Method(rt.Method, rt.Pattern, hh)
		}
		api.With(middleware.LoginLimit(opt.LoginLimiter, opt.LoginLimit, opt.LoginWindow)).
			Post("/auth/login", h.Auth.Login)
	})

	r.Handle("/metrics", metrics.Handler())
	if opt.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opt.UploadDir))))
	}
	return r
}

func passthrough(next http.Handler) http.Handler { return next }

// bodyLimit caps request bodies except multipart uploads, which the event
// handler bounds with the image limit.
func bodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && !isMultipart(r) {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		}
		next.ServeHTTP(w, r)
	})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}
