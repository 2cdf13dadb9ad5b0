package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/capture"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	filestore "trivia-quiz-service/internal/infra/file"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/leaderboard"
	"trivia-quiz-service/internal/quiz"
	"trivia-quiz-service/internal/storage"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Question source: JSON file when configured, Postgres when available,
	// a built-in sample set otherwise.
	var loader memory.QuestionLoader
	switch {
	case cfg.Quiz.QuestionsFile != "":
		loader = filestore.NewQuestionLoader(cfg.Quiz.QuestionsFile)
	case pool != nil:
		setID := cfg.Quiz.QuestionSet
		if setID == "" {
			setID = "default"
		}
		loader = pgstore.NewQuestionLoader(pool, setID)
	default:
		loader = memory.NewStaticQuestionLoader(sampleQuestions())
	}

	cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var questionRepo quiz.QuestionRepository
	if redisClient != nil {
		questionRepo = redisinfra.NewQuestionRepository(redisClient, loader, cacheTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, cacheTTL)
	}

	// Result sink: Postgres when configured, the JSON-file fallback when a
	// results file is set, plain memory otherwise.
	var sink quiz.ResultSink
	switch {
	case pool != nil:
		sink = pgstore.NewResultStore(pool)
	case cfg.Results.File != "":
		sink = filestore.NewResultStore(cfg.Results.File)
	default:
		sink = memory.NewResultStore()
	}

	var notifier quiz.Notifier
	if redisClient != nil {
		notifier = redisinfra.NewNotifier(redisClient)
	} else {
		notifier = memory.NewNotifier()
	}

	photosDir := cfg.Photos.Dir
	if photosDir == "" {
		photosDir = "data/photos"
	}
	photosBase := cfg.Photos.BaseURL
	if photosBase == "" {
		photosBase = "/photos"
	}
	photos := storage.NewDiskStore(photosDir, photosBase)

	revealDelay := config.Duration(cfg.Quiz.RevealDelay, quiz.DefaultRevealDelay)
	policy := leaderboard.ParsePolicy(cfg.Results.SortKeys)

	var camera capture.Device
	if cfg.Camera.FrameURL != "" {
		camera = capture.NewHTTPDevice(cfg.Camera.FrameURL)
	}

	service := quiz.NewQuizService(memory.NewSessionStore(), questionRepo, sink, photos, notifier, revealDelay, policy)
	handler := transport.NewHandler(service, camera)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeLeaderboard)
	mux.Handle("GET "+strings.TrimRight(photosBase, "/")+"/", http.StripPrefix(strings.TrimRight(photosBase, "/")+"/", http.FileServer(http.Dir(photosDir))))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions keeps the server usable with zero configuration; swap in a
// questions file or Postgres set for real content.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           1,
			Text:         "Which planet is known as the Red Planet?",
			Options:      []string{"Venus", "Mars", "Jupiter", "Mercury"},
			CorrectIndex: 1,
			Explanation:  "Iron oxide on the surface gives Mars its reddish color.",
		},
		{
			ID:           2,
			Text:         "What is the largest ocean on Earth?",
			Options:      []string{"Atlantic", "Indian", "Arctic", "Pacific"},
			CorrectIndex: 3,
		},
		{
			ID:           3,
			Text:         "How many continents are there?",
			Options:      []string{"five", "six", "seven", "eight"},
			CorrectIndex: 2,
		},
	}
}
