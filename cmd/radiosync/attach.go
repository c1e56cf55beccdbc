package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"radiosync/internal/browser"
	"radiosync/internal/config"
	"radiosync/internal/toggle"
)

var attachCmd = &cobra.Command{
	Use:   "attach [url]",
	Short: "Attach to the dashboard and keep its toggle synchronized",
	Long: `Attach opens (or finds) the dashboard page, binds the toggle, and stays
resident: label clicks are bridged into framework events and presentation is
re-applied after every re-render. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

// errShutdown is the clean-exit sentinel for the signal goroutine.
var errShutdown = errors.New("shutdown requested")

func runAttach(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger.Info("attaching",
		zap.String("run_id", runID),
		zap.String("url", args[0]),
		zap.String("selector", cfg.Toggle.ContainerSelector))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := browser.NewManager(cfg.Browser, logger)
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = mgr.Shutdown() }()

	page, err := openOrFind(ctx, mgr, cfg, args[0])
	if err != nil {
		return err
	}

	doc, err := browser.Attach(page, logger)
	if err != nil {
		return fmt.Errorf("attach to page: %w", err)
	}
	defer doc.Close()

	s := toggle.NewWithDeps(doc, cfg.Toggle, toggle.Deps{Logger: logger, Sheet: &cfg.Style})
	s.Start()
	defer s.Close()

	writeControlFile(mgr.ControlURL(), runID)
	defer removeControlFile()

	if configPath != "" {
		w, werr := config.NewWatcher(configPath, logger, func(c config.Config) {
			s.SetSheet(c.Style)
		})
		if werr != nil {
			logger.Warn("config watch unavailable", zap.Error(werr))
		} else if werr = w.Start(); werr != nil {
			logger.Warn("config watch failed to start", zap.Error(werr))
		} else {
			defer w.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Info("signal received", zap.String("signal", sig.String()))
			return errShutdown
		case <-gctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		select {
		case <-s.Done():
			if err := s.Err(); err != nil {
				return err
			}
			return errShutdown
		case <-gctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	logger.Info("detached", zap.String("run_id", runID))
	return nil
}

// controlFile advertises the DevTools URL of a launched browser so one-shot
// commands can reach the same instance.
func controlFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".radiosync", "control.txt")
}

func writeControlFile(controlURL, runID string) {
	path := controlFile()
	if path == "" || controlURL == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("control file dir", zap.Error(err))
		return
	}
	body := fmt.Sprintf("%s\n%s\n", controlURL, runID)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		logger.Warn("control file write", zap.Error(err))
	}
}

func removeControlFile() {
	if path := controlFile(); path != "" {
		_ = os.Remove(path)
	}
}
