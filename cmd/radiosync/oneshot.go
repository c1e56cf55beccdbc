package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-rod/rod"
	"github.com/spf13/cobra"

	"radiosync/internal/browser"
	"radiosync/internal/config"
	"radiosync/internal/toggle"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [url]",
	Short: "Print the toggle's current state as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withToggle(args[0], func(ctx context.Context, s *toggle.Synchronizer) error {
			out, err := json.MarshalIndent(s.Dump(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply [url] [value]",
	Short: "Re-apply presentation, optionally selecting a value first",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withToggle(args[0], func(ctx context.Context, s *toggle.Synchronizer) error {
			if len(args) == 2 {
				if err := s.Select(args[1]); err != nil {
					return err
				}
			}
			s.ForceApply()
			st := s.Dump()
			for _, opt := range st.Options {
				marker := " "
				if opt.Checked {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, opt.Value)
			}
			return nil
		})
	},
}

var exerciseCmd = &cobra.Command{
	Use:   "exercise [url]",
	Short: "Round-trip every option and restore the original selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withToggle(args[0], func(ctx context.Context, s *toggle.Synchronizer) error {
			if err := s.Exercise(ctx); err != nil {
				return err
			}
			fmt.Printf("exercised %d selections, original selection restored\n", s.Selections())
			return nil
		})
	},
}

// withToggle connects, binds a synchronizer to the page named by urlArg, waits
// for binding, and hands the synchronizer to fn.
func withToggle(urlArg string, fn func(context.Context, *toggle.Synchronizer) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	applyControlFile(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := browser.NewManager(cfg.Browser, logger)
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = mgr.Shutdown() }()

	page, err := openOrFind(ctx, mgr, cfg, urlArg)
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

	deadline := time.After(30 * time.Second)
	for !s.Bound() {
		select {
		case <-s.Done():
			return s.Err()
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("timed out waiting for %s", cfg.Toggle.ContainerSelector)
		case <-time.After(50 * time.Millisecond):
		}
	}

	return fn(ctx, s)
}

// openOrFind prefers an already-open page when attached to a running browser;
// otherwise it navigates a fresh one.
func openOrFind(ctx context.Context, mgr *browser.Manager, cfg config.Config, url string) (*rod.Page, error) {
	if cfg.Browser.DebuggerURL != "" {
		if page, err := mgr.Find(url); err == nil {
			return page, nil
		}
	}
	return mgr.Open(ctx, url)
}

// applyControlFile points an unset debugger_url at the browser a resident
// attach run advertised in the working directory.
func applyControlFile(cfg *config.Config) {
	if cfg.Browser.DebuggerURL != "" {
		return
	}
	path := controlFile()
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	lines := strings.SplitN(string(data), "\n", 2)
	if len(lines) > 0 && lines[0] != "" {
		cfg.Browser.DebuggerURL = lines[0]
	}
}
