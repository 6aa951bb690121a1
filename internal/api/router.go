package api

import (
	"net/http"
	"time"

	"contest_arena/internal/api/handler"
	"contest_arena/internal/api/middleware"
	"contest_arena/internal/app/service"
	"contest_arena/internal/common"
	"contest_arena/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Auth        *service.AuthService
	Contests    *service.ContestService
	Questions   *service.QuestionService
	Submissions *service.SubmissionService
	Leaderboard *service.LeaderboardService
}

type RouterConfig struct {
	RequestTimeout          time.Duration
	LeaderboardPushInterval time.Duration
}

func NewRouter(guard *security.Guard, services Services, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, common.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusMethodNotAllowed, common.Failure("METHOD_NOT_ALLOWED"))
	})

	authHandler := handler.NewAuthHandler(services.Auth)
	contestHandler := handler.NewContestHandler(services.Contests, services.Questions)
	submissionHandler := handler.NewSubmissionHandler(services.Submissions)
	leaderboardHandler := handler.NewLeaderboardHandler(services.Leaderboard, cfg.LeaderboardPushInterval)

	r.Route("/api", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(publicAuth chi.Router) {
			publicAuth.Use(chiMiddleware.Timeout(timeout))
			authHandler.RegisterRoutes(publicAuth)
			publicAuth.Group(func(private chi.Router) {
				private.Use(middleware.Authenticator(guard))
				authHandler.RegisterAuthenticatedRoutes(private)
			})
		})

		// Everything under /contests requires a caller
		api.Route("/contests", func(contests chi.Router) {
			contests.Use(middleware.Authenticator(guard))
			contests.Group(func(timed chi.Router) {
				timed.Use(chiMiddleware.Timeout(timeout))
				contestHandler.RegisterRoutes(timed)
				submissionHandler.RegisterRoutes(timed)
				leaderboardHandler.RegisterRoutes(timed)
			})
			leaderboardHandler.RegisterLiveRoutes(contests)
		})
	})

	return r
}
