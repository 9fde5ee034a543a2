package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type server struct {
	db           *database
	jwtAuth      *jwtauth.JWTAuth
	notifier     Notifier
	orderLimiter *rateLimiter
	apiTokenHash []byte
	now          func() time.Time
	router       http.Handler
}

// newServer wires the site handlers. The operator API is only mounted when
// apiTokenHash is set.
func newServer(db *database, notifier Notifier, sessionSecret string, apiTokenHash string) *server {
	if notifier == nil {
		notifier = noopNotifier{}
	}

	s := &server{
		db:           db,
		jwtAuth:      jwtauth.New("HS256", []byte(sessionSecret), nil),
		notifier:     notifier,
		orderLimiter: newRateLimiter(db, orderRatePrefix, orderRateLimit, orderRateWindow),
		now:          time.Now,
	}
	if apiTokenHash != "" {
		s.apiTokenHash = []byte(apiTokenHash)
	}

	s.router = s.routes()
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verify(s.jwtAuth, jwtauth.TokenFromCookie))

		r.Get("/", s.getHome)
		r.Get("/catalog", s.getCatalog)
		r.Get("/track/{slug}", s.getTrack)
		r.Get("/order", s.getOrder)
		r.Post("/order", s.postOrder)
		r.Get("/order/thanks", s.getOrderThanks)
	})

	if s.apiTokenHash != nil {
		r.Route("/api", func(r chi.Router) {
			r.Use(mustApiToken(s.apiTokenHash))

			r.Post("/tracks", s.postApiTrack)
			r.Put("/tracks/{id}", s.putApiTrack)
			r.Delete("/tracks/{id}", s.deleteApiTrack)
			r.Post("/genres", s.postApiGenre)
			r.Get("/inquiries", s.getApiInquiries)
			r.Patch("/inquiries/{id}", s.patchApiInquiry)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, http.StatusNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, http.StatusMethodNotAllowed, nil)
	})

	return r
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func extractID(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "id")
	return strconv.ParseUint(idStr, 10, 64)
}
