package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/moodlog/internal"
	"github.com/starford/moodlog/internal/checkin"
	"github.com/starford/moodlog/internal/dashboard"
	"github.com/starford/moodlog/internal/models"
	pkgconfig "github.com/starford/moodlog/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func recordCheckin(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	feeling, err := checkin.ParseFeeling(cmd.String("feeling"))
	if err != nil {
		return err
	}
	entry := checkin.New(feeling, cmd.String("note"), time.Now())
	if date := cmd.String("date"); date != "" {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
		}
		entry.Date = date
	}

	logger := internal.NewLogger(cfg, os.Stderr)
	store, provider, err := internal.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	out := store.Record(ctx, entry)
	verb := "Recorded"
	if out.Replaced {
		verb = "Updated"
	}
	fmt.Printf("%s %s %s for %s. Streak: %d day(s).\n", verb, entry.Emoji, entry.Feeling, entry.Date, out.Streak)
	fmt.Println(checkin.Response(feeling))
	return nil
}

func status(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := internal.NewLogger(cfg, os.Stderr)
	store, provider, err := internal.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	view := dashboard.Build(store, int(cmd.Int("days")))

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	if view.Today == nil {
		fmt.Println("No check-ins yet.")
		return nil
	}
	fmt.Printf("Latest: %s %s on %s at %s\n", view.Today.Emoji, view.Today.Feeling, view.Today.Date, view.Today.Time)
	if view.Today.Note != "" {
		fmt.Printf("Note: %s\n", view.Today.Note)
	}
	fmt.Printf("Streak: %d day(s)\n", view.Streak)
	for _, p := range view.Trend {
		fmt.Printf("  %s %s %s\n", p.Weekday, p.Date, p.Emoji)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "moodlog",
		Usage:  "Daily mood check-ins with a consecutive-day streak",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and event stream",
				Action: serve,
			},
			{
				Name:   "checkin",
				Usage:  "Record today's mood",
				Action: recordCheckin,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "feeling",
						Aliases:  []string{"f"},
						Usage:    "great, good, okay, not great or difficult",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "note",
						Aliases: []string{"n"},
						Usage:   "Optional note",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Calendar date YYYY-MM-DD (defaults to today, UTC)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show the latest mood, recent trend and streak",
				Action: status,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Usage: "Number of trailing entries in the trend",
						Value: dashboard.DefaultTrendDays,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the dashboard as JSON",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
