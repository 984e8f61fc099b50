package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	appconfig "github.com/wolfman30/podology-frontdesk/internal/config"
	"github.com/wolfman30/podology-frontdesk/internal/reminders"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	once := flag.Bool("once", false, "render the board once and exit")
	markID := flag.String("mark-sent", "", "mark a notification as sent, then render")
	interval := flag.Duration("interval", cfg.BoardRefreshInterval, "refresh interval")
	flag.Parse()

	logger := logging.New(cfg.LogLevel).Component("frontdesk")

	client, err := reminders.NewAPIClient(reminders.ClientConfig{
		BaseURL: cfg.FrontdeskAPIURL,
		Token:   cfg.FrontdeskAPIToken,
	})
	if err != nil {
		logger.Error("invalid api client config", "error", err)
		os.Exit(1)
	}

	loc := cfg.Location()
	board := reminders.NewBoard(
		reminders.BucketSource{Lister: client},
		reminders.NewClassifier(cfg.UpcomingHorizon),
		client,
		nil,
		logger,
	).WithInterval(*interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *markID != "" {
		id, err := uuid.Parse(*markID)
		if err != nil {
			logger.Error("invalid notification id", "id", *markID, "error", err)
			os.Exit(2)
		}
		res, err := board.MarkSent(ctx, id)
		if err != nil {
			logger.Error("mark sent failed", "id", id, "error", err)
			os.Exit(1)
		}
		if res.Changed {
			fmt.Printf("marked %s as sent\n", id)
		} else {
			fmt.Printf("%s was already sent\n", id)
		}
	}

	if err := runBoard(ctx, board, *interval, *once, loc); err != nil {
		logger.Error("board stopped", "error", err)
		os.Exit(1)
	}
}

func runBoard(ctx context.Context, board *reminders.Board, interval time.Duration, once bool, loc *time.Location) error {
	snap, err := board.Refresh(ctx)
	if err != nil && once {
		return err
	}
	render(os.Stdout, snap, loc)
	if once {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap, _ = board.Refresh(ctx)
			fmt.Fprint(os.Stdout, "\033[H\033[2J")
			render(os.Stdout, snap, loc)
		}
	}
}
