package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"upfolio/internal/config"
	"upfolio/internal/poller"
	"upfolio/internal/session"
	"upfolio/internal/upstream"
	"upfolio/internal/util"
	"upfolio/pkg/upfolio"
)

func main() {
	_ = godotenv.Load()

	tokenFlag := flag.String("token", "", "access token from the login redirect (saved for later runs)")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("UPFOLIO_CONFIG"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logPath := fmt.Sprintf("/tmp/upfolio-dash-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	logger := util.NewFileLogger(logFile, cfg.Logging.Level)

	sessPath, err := session.DefaultPath()
	if err != nil {
		log.Fatalf("resolving session path: %v", err)
	}
	store := session.NewStore(sessPath)
	if err := store.Load(); err != nil {
		log.Fatalf("loading session: %v", err)
	}

	if *tokenFlag != "" {
		if err := store.Save(*tokenFlag); err != nil {
			log.Fatalf("saving session: %v", err)
		}
	}

	if store.Token() == "" {
		up := upstream.NewClient(
			cfg.Upstream.BaseURL,
			cfg.Upstream.APIKey,
			cfg.Upstream.APISecret,
			cfg.Upstream.RedirectURI,
		)
		fmt.Fprintln(os.Stderr, "no session found. log in with the brokerage:")
		fmt.Fprintln(os.Stderr, "  "+up.LoginURL())
		fmt.Fprintln(os.Stderr, "the callback redirects with ?token=<access_token>; re-run with -token <access_token>")
		os.Exit(1)
	}

	client := upfolio.NewClient(cfg.Dashboard.ServerURL)

	interval := time.Duration(cfg.Dashboard.PollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}

	var p *tea.Program

	poll := poller.New(interval, func(ctx context.Context) error {
		snap, err := client.GetHoldings(ctx, store.Token())
		if err != nil {
			p.Send(snapshotMsg{err: err})
			return err
		}
		p.Send(snapshotMsg{snap: snap})
		return nil
	}, logger)

	// Logging out stops the poll; the token's presence is the sole signal
	// of being logged in.
	store.OnChange(func(token string) {
		if token == "" {
			go poll.Stop()
		}
	})

	p = tea.NewProgram(
		initialModel(store, poll, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poll.Start(ctx)
	defer poll.Stop()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
