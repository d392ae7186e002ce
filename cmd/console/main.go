package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/text-adventure-client/internal/cache"
	"github.com/jwebster45206/text-adventure-client/internal/client"
	"github.com/jwebster45206/text-adventure-client/internal/config"
	"github.com/jwebster45206/text-adventure-client/internal/game"
	"github.com/jwebster45206/text-adventure-client/internal/logger"
)

func main() {
	plain := flag.Bool("plain", false, "use a plain line prompt instead of the full-screen UI")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logOut, closeLog, err := logger.OpenFile(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = closeLog() // Ignore error in defer
	}()
	log := logger.Setup(cfg, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)
	if closeCache := attachScreenCache(ctx, cfg, api, log); closeCache != nil {
		defer func() {
			_ = closeCache() // Ignore error in defer
		}()
	}

	g := game.New(api, cfg.StartScreenID, log)
	if _, err := g.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Could not start the game: %v\n", err)
		os.Exit(1)
	}

	if *plain {
		if err := runPlain(ctx, g, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(NewConsoleUI(ctx, g, cfg.HTTPTimeout),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// attachScreenCache wires a Redis screen cache into api when REDIS_URL is
// set. A cache that cannot be reached is skipped.
func attachScreenCache(ctx context.Context, cfg *config.Config, api *client.Client, log *slog.Logger) func() error {
	if cfg.RedisURL == "" {
		return nil
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Warn("Screen cache unavailable, continuing without it", "error", err)
		return nil
	}
	api.WithScreenStore(cache.NewScreenStore(redisCache, cfg.ScreenCacheTTL, log))
	return redisCache.Close
}
