package cli

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contest_arena/internal/api"
	"contest_arena/internal/app/service"
	"contest_arena/internal/common/security"
	"contest_arena/internal/domain/repository"
	"contest_arena/internal/domain/repository/memory"
	"contest_arena/internal/platform/cache"
	"contest_arena/internal/platform/config"
	"contest_arena/internal/platform/database"
	"contest_arena/internal/platform/database/migrations"
	"contest_arena/internal/platform/queue"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// newServeCmd builds the CLI subcommand to start the server.
func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

type repositories struct {
	users       repository.UserRepository
	contests    repository.ContestRepository
	questions   repository.QuestionRepository
	submissions repository.SubmissionRepository
}

// app holds everything the server needs plus the handles to release on exit.
type app struct {
	handler http.Handler
	db      *sql.DB
	rdb     *redis.Client
}

func (a *app) close() {
	if a.rdb != nil {
		queue.CloseRedis(a.rdb)
	}
	if a.db != nil {
		database.Close(a.db)
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	var repos repositories
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.Connect(ctx, cfg.DBConnStr)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := migrations.Apply(ctx, db); err != nil {
			a.close()
			return nil, err
		}
		repos = repositories{
			users:       repository.NewPgUserRepository(db),
			contests:    repository.NewPgContestRepository(db),
			questions:   repository.NewPgQuestionRepository(db),
			submissions: repository.NewPgSubmissionRepository(db),
		}
	default:
		log.Println("WARN: using in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{users: store, contests: store, questions: store, submissions: store}
	}

	var (
		board service.LeaderboardCache
		judge service.JudgeDispatcher
	)
	if cfg.RedisAddr != "" {
		rdb, err := queue.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.close()
			return nil, err
		}
		a.rdb = rdb
		repos.contests = cache.NewContestCache(repos.contests, rdb, cfg.ContestCacheTTL)
		board = cache.NewLeaderboard(rdb, cfg.ContestCacheTTL)
		judge = queue.NewJudgeQueue(rdb, cfg.JudgeQueueName)
	} else {
		log.Println("WARN: REDIS_ADDR not set; contest cache, cached leaderboard and judge queue are disabled")
	}

	tokens := security.NewTokenManager(cfg.JWTKey)
	leaderboard := service.NewLeaderboardService(repos.contests, repos.submissions, board, cfg.LeaderboardSize)
	services := api.Services{
		Auth:        service.NewAuthService(repos.users, tokens),
		Contests:    service.NewContestService(repos.contests, repos.questions),
		Questions:   service.NewQuestionService(repos.contests, repos.questions),
		Submissions: service.NewSubmissionService(repos.contests, repos.questions, repos.submissions, judge, leaderboard),
		Leaderboard: leaderboard,
	}
	a.handler = api.NewRouter(security.NewGuard(tokens), services, api.RouterConfig{
		RequestTimeout:          cfg.RequestTimeout,
		LeaderboardPushInterval: cfg.LeaderboardPushInterval,
	})
	return a, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:        ":" + cfg.APIPort,
		Handler:     a.handler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server stopped gracefully.")
	return nil
}
