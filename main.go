package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (yaml, toml or json)")
	hashPassword := flag.String("hash-console-password", "", "Print a bcrypt hash for auth.console_password_hash and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := HashConsolePassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := NewLogger(cfg.Log)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn().Err(envErr).Msg("could not read .env")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := OpenRanking(cfg.Ranking.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	auth, err := NewAuth(cfg.Auth)
	if err != nil {
		return err
	}
	if !auth.ConsoleEnabled() {
		logger.Info().Msg("debug console disabled, no auth.console_password_hash set")
	}

	ranking := NewRankingWorker(store, cfg.Ranking.TopN, logger)
	game := NewGame(cfg.Game, ranking, logger)
	ranking.Start(ctx, game.PublishRanking)
	go game.Run(ctx)

	hub := NewHub(game, auth, cfg.Server, logger)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           SetupRoutes(hub, store, cfg.Server, cfg.Ranking.TopN),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Int("tick_rate", cfg.Game.TickRate).
			Int("max_players", cfg.Game.MaxPlayers).
			Msg("server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}
	ranking.Wait()
	return nil
}
