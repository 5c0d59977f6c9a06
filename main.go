package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	stop()
	os.Exit(code)
}

// run parses argv and starts either the TUI or the simulate proxy.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("qbloch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	serve := fs.Bool("serve", false, "run the /api/simulate proxy instead of the TUI")
	explorer := fs.Bool("explorer", false, "start on the single-qubit explorer")
	if err := fs.Parse(argv); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "qbloch: %v\n", err)
		return 1
	}
	level, _ := cfg.Level()

	if *serve {
		logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		proxy := NewProxy(cfg.UpstreamURL, cfg.Timeout, logger)
		if err := proxy.ListenAndServe(ctx, cfg.Listen); err != nil {
			logger.Error("proxy stopped", "error", err)
			return 1
		}
		return 0
	}

	// The terminal belongs to the TUI; logs go to a file.
	f, err := tea.LogToFile(cfg.LogFile, "qbloch")
	if err != nil {
		fmt.Fprintf(stderr, "qbloch: open log: %v\n", err)
		return 1
	}
	defer f.Close()
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	sim := NewHTTPSimulator(cfg.SimulatorURL, cfg.Timeout, logger)
	model := NewModel(cfg, sim, logger)
	if *explorer {
		model.mode = modeExplorer
	}

	logger.Info("starting", "simulator_url", cfg.SimulatorURL, "columns", cfg.Columns)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
