package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"smartlift/src/config"
	"smartlift/src/dispatcher"
	"smartlift/src/elev"
	"smartlift/src/timer"
	"smartlift/src/types"
	"smartlift/src/utils"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envPath := flag.String("env", ".env", "env file with LIFT_* overrides")
	debug := flag.Bool("debug", false, "log at debug level")
	strategyName := flag.String("strategy", "greedy", "dispatch strategy: greedy or weighted")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	utils.InitLogger(os.Stderr, level)

	cfg, err := loadConfig(*configPath, *envPath)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	strategy, err := pickStrategy(*strategyName, cfg)
	if err != nil {
		slog.Error("Invalid strategy", "err", err)
		os.Exit(1)
	}

	registry := elev.NewRegistry(cfg)
	disp := dispatcher.New(registry, cfg.System, strategy)
	slog.Info("Building ready",
		"cars", cfg.System.NumElevators,
		"floors", cfg.System.NumFloors,
		"strategy", *strategyName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingress := make(chan types.Request, config.IngressBuffer)
	motion := make(chan timer.TimerAction)
	// Blocks on stdin, so it lives outside the group and never holds up shutdown.
	go readCommands(ctx, os.Stdin, ingress, motion, registry)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return timer.MotionLoop(ctx, registry, cfg.TickInterval, motion)
	})
	g.Go(func() error {
		return disp.Run(ctx, ingress, cfg.RetryInterval)
	})
	g.Go(func() error {
		reportStatus(ctx, registry, config.StatusInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Shutting down", "err", err)
		os.Exit(1)
	}
	slog.Info("Shut down", "served", len(disp.History()), "pending", len(disp.Pending()))
}

func loadConfig(configPath, envPath string) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return config.Config{}, err
		}
	}
	return config.ApplyEnv(cfg, envPath)
}

func pickStrategy(name string, cfg config.Config) (dispatcher.Strategy, error) {
	switch name {
	case "greedy":
		return dispatcher.Greedy{}, nil
	case "weighted":
		return dispatcher.NewWeightedScan(cfg), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}

// readCommands turns stdin lines into requests. Besides "from to [passengers]" it
// understands "pause", "resume" and "restore <car>".
func readCommands(ctx context.Context, r io.Reader, ingress chan<- types.Request, motion chan<- timer.TimerAction, registry *elev.Registry) {
	defer close(ingress)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "pause", "resume":
			action := timer.Stop
			if fields[0] == "resume" {
				action = timer.Start
			}
			select {
			case motion <- action:
			case <-ctx.Done():
				return
			}
			continue
		case "restore":
			if len(fields) != 2 {
				slog.Warn("Usage: restore <car>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err == nil {
				err = registry.Restore(id)
			}
			if err != nil {
				slog.Warn("Restore failed", "car", fields[1], "err", err)
			}
			continue
		}

		req, err := utils.ParseRequest(line)
		if err != nil {
			slog.Warn("Dropped input", "err", err)
			continue
		}
		select {
		case ingress <- req:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Reading stdin", "err", err)
	}
}

func reportStatus(ctx context.Context, registry *elev.Registry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Println(utils.FormatStatus(registry.Statuses()))
			fmt.Println()
		}
	}
}
