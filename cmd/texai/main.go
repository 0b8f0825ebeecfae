package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/youruser/texai/internal/ai"
	"github.com/youruser/texai/internal/catalog"
	"github.com/youruser/texai/internal/config"
	"github.com/youruser/texai/internal/llm"
	"github.com/youruser/texai/internal/logging"
	"github.com/youruser/texai/internal/server"
	"github.com/youruser/texai/internal/store"
)

//go:embed version.txt
var version string

// buildCommit is set via -ldflags or falls back to VCS info from debug.ReadBuildInfo.
var buildCommit string

var log = logging.Get()

// getBuildCommit returns the short commit hash, resolving from VCS build info if needed.
func getBuildCommit() string {
	if buildCommit != "" {
		return buildCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}
	return ""
}

func versionString() string {
	v := strings.TrimSpace(version)
	if commit := getBuildCommit(); commit != "" {
		return v + " (" + commit + ")"
	}
	return v
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Printf("texai %s\n", versionString())
			return
		case "--build":
			if commit := getBuildCommit(); commit != "" {
				fmt.Println(commit)
			} else {
				fmt.Println("unknown")
			}
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "texai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real env vars win either way
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	defer log.Close()
	if log.Enabled() {
		fmt.Fprintln(os.Stderr, "texai: debug logging enabled")
	}
	log.Info("texai %s starting", versionString())

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	client := llm.NewClient(cfg.OllamaBaseURL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := client.CheckRunning(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: Ollama not reachable at %s: %v\n", cfg.OllamaBaseURL, err)
	}
	cancel()

	aiSvc := ai.NewService(client, cfg)
	srv := server.New(cfg, aiSvc, client, catalog.NewOpenRouter(), st)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
