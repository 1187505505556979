package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microblog-server/internal/config"
	"microblog-server/internal/handlers"
	"microblog-server/internal/middleware"
	"microblog-server/internal/repository"
	"microblog-server/internal/services"
	"microblog-server/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Select media file store
	var files storage.FileStore
	var localStore *storage.LocalStore
	if cfg.Media.S3.Bucket != "" {
		files, err = storage.NewS3Store(
			context.Background(),
			cfg.Media.S3.Region,
			cfg.Media.S3.Bucket,
			cfg.Media.S3.AccessKey,
			cfg.Media.S3.SecretKey,
			cfg.Media.S3.Endpoint,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 media store")
		}
		log.Info().Str("bucket", cfg.Media.S3.Bucket).Msg("Using S3 media store")
	} else {
		localStore = storage.NewLocalStore(cfg.Media.Dir)
		files = localStore
		log.Info().Str("dir", cfg.Media.Dir).Msg("Using local media store")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// Initialize services
	mediaService := services.NewMediaService(files)
	userService := services.NewUserService(userRepo, mediaService, cfg.Session.Secret)
	postService := services.NewPostService(postRepo, userRepo, mediaService)
	followService := services.NewFollowService(followRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, mediaService)
	postHandler := handlers.NewPostHandler(postService, followService, mediaService)
	chatHandler := handlers.NewChatHandler(messageService, mediaService)
	followHandler := handlers.NewFollowHandler(followService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Session(userService))

	// Public routes
	r.Get("/", postHandler.Index)
	r.Get("/index", postHandler.Index)
	r.Get("/user/{username}", postHandler.UserPosts)
	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/post/new", postHandler.NewPostForm)
		r.Post("/post/new", postHandler.CreatePost)
		r.Get("/post/{id}/delete", postHandler.DeletePost)
		r.Post("/post/{id}/delete", postHandler.DeletePost)
		r.Get("/account", authHandler.AccountForm)
		r.Post("/account", authHandler.UpdateAccount)
		r.Get("/chat/{username}", chatHandler.ChatPage)
		r.Post("/chat/{username}", chatHandler.SendMessage)
		r.Get("/chat/{username}/messages", chatHandler.Fragment)
		r.Get("/messages", chatHandler.Conversations)
		r.Get("/follow/{username}", followHandler.Follow)
		r.Get("/unfollow/{username}", followHandler.Unfollow)
	})

	// Media files, when stored locally
	if localStore != nil {
		fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(localStore.Root())))
		r.Get("/media/*", fileServer.ServeHTTP)
	}

	r.NotFound(handlers.NotFound)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
