package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"goodnews/internal/app"
	"goodnews/internal/config"
	"goodnews/internal/logger"
)

func main() {
	cmd := &cli.Command{
		Name:  "goodnews",
		Usage: "Positive news aggregator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (.json, .yaml)",
				Value:   "config.json",
				Sources: cli.EnvVars("GOODNEWS_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run HTTP API and background ingestion worker",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Usage: "Override server.address"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return err
					}
					if addr := c.String("address"); addr != "" {
						cfg.Server.Address = addr
					}
					a, err := app.New(ctx, cfg)
					if err != nil {
						return err
					}
					return a.Run(ctx)
				},
			},
			{
				Name:  "fetch",
				Usage: "Run a single ingestion cycle and exit",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return err
					}
					a, err := app.New(ctx, cfg)
					if err != nil {
						return err
					}
					defer a.Close()
					report, err := a.FetchOnce(ctx)
					if report != nil {
						fmt.Printf("%s\nnew=%d skipped=%d total=%d images=%s failed_feeds=%d time=%s\n",
							report.Message(),
							report.NewArticles,
							report.Skipped,
							report.TotalInDatabase,
							report.ImageSuccessRate(),
							report.FeedsFailed,
							report.ExecutionTime.Round(time.Millisecond),
						)
					}
					return err
				},
			},
			{
				Name:  "migrate",
				Usage: "Apply database schema migrations",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return err
					}
					appLogger, err := logger.New(cfg.Logger)
					if err != nil {
						return fmt.Errorf("failed to setup logger: %w", err)
					}
					if err := app.Migrate(ctx, cfg, appLogger); err != nil {
						return err
					}
					appLogger.Info("Migrations applied", slog.String("component", "app"), slog.String("database", cfg.Database.Driver))
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
