package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/erazemk/logistika/internal/api"
	"github.com/erazemk/logistika/internal/auth"
	"github.com/erazemk/logistika/internal/config"
	"github.com/erazemk/logistika/internal/db"
	"github.com/erazemk/logistika/internal/logging"
	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/service"
	"github.com/erazemk/logistika/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// INFO/WARN → stdout, ERROR → stderr, optionally everything to a file.
	log, closeLog, err := logging.New(cfg.LogLevel, cfg.LogPath, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server failed")
		closeLog()
		os.Exit(1)
	}
	closeLog()
}

// run opens the database and serves the API until SIGINT or SIGTERM.
func run(cfg config.Config, log zerolog.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}

	ctx := context.Background()

	password, err := bootstrapAdmin(ctx, database, cfg.AdminUser)
	if err != nil {
		return fmt.Errorf("creating system administrator: %w", err)
	}
	if password != "" {
		printInitResult(os.Stdout, cfg.DBPath, cfg.AdminUser, password)
	}

	log.Info().Str("path", cfg.DBPath).Msg("database ready")

	// JWT secret is generated on first run and kept in the database.
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := service.New(database, log)

	var middleware []gin.HandlerFunc
	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
		corsConfig.ExposeHeaders = []string{logging.RequestIDHeader}
		corsConfig.AllowCredentials = true
		middleware = append(middleware, cors.New(corsConfig))
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(engine, jwtSecret, log, middleware...),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Msg("server started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	log.Info().Msg("server stopped, closing database")
	return nil
}

// bootstrapAdmin creates the system administrator when the database has no
// users yet and returns the generated password. It returns "" when users
// already exist.
func bootstrapAdmin(ctx context.Context, database *sqlx.DB, username string) (string, error) {
	users, err := store.ListUsers(ctx, database)
	if err != nil {
		return "", err
	}
	if len(users) > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleSystemAdmin); err != nil {
		return "", fmt.Errorf("creating system administrator: %w", err)
	}
	return password, nil
}

// printInitResult prints the first-run credentials.
func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, "Database initialized: %s\n", dbPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "System administrator account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "It can be changed after logging in.")
	fmt.Fprintln(w)
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
