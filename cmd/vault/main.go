package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"github.com/gokatarajesh/dsa-vault/internal/app"
	"github.com/gokatarajesh/dsa-vault/internal/cli"
	"github.com/gokatarajesh/dsa-vault/internal/config"
	"github.com/gokatarajesh/dsa-vault/internal/logging"
	"github.com/gokatarajesh/dsa-vault/internal/question"
	"github.com/gokatarajesh/dsa-vault/internal/store"
)

func main() {
	dir := flag.String("dir", "", "Override STORE_FILE_DIR for the file driver")
	history := flag.String("history", filepath.Join(os.TempDir(), "dsa-vault.history"), "Readline history file")
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	if err := run(context.Background(), *dir, *history); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir, history string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if dir != "" {
		cfg.Store.FileDir = dir
	}

	// Keep logs off the terminal unless something goes wrong.
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.Name+"-cli", cfg.Env, cfg.LogLevel)

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store failed: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error().Err(err).Msg("store shutdown error")
		}
	}()

	repo, err := question.Open(ctx, store.NewAdapter(backend.Slot, logger), question.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("load questions failed: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vault> ",
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init terminal failed: %w", err)
	}
	defer rl.Close()

	if repo.Recovered() {
		fmt.Fprintln(rl.Stdout(), "Saved questions could not be read; starting with an empty vault.")
	}

	session := cli.New(repo, rl.Stdout(), cli.NewReadlineConfirmer(rl), logger)
	return session.Run(ctx, rl)
}
