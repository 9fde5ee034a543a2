package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	err := godotenv.Load()
	if os.IsNotExist(err) {
		log.Printf("no .env file found, skipping")
	} else if err != nil {
		log.Fatalf("failed loading .env file: %s", err)
	}

	app := newApp(os.Stderr)
	err = app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command line application. Logs go to logOut.
func newApp(logOut io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "tracksite"
	app.Usage = "Track catalog and licensing inquiry site."
	app.Flags = flags()
	app.Before = func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		ctx.App.Metadata = map[string]interface{}{"config": cfg}
		return setupLogger(logOut, cfg.LogLevel)
	}
	app.Commands = commands()
	app.Action = serve
	return app
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to a TOML config file",
			EnvVars: []string{"TRACKSITE_CONFIG"},
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "port to run server on",
			EnvVars: []string{"TRACKSITE_PORT"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "log level (debug, info, warn, error)",
			EnvVars: []string{"TRACKSITE_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "database-driver",
			Value:   "sqlite",
			Usage:   "database driver, sqlite or mysql",
			EnvVars: []string{"TRACKSITE_DB_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "tracksite.db",
			Usage:   "sqlite file path or mysql dsn",
			EnvVars: []string{"TRACKSITE_DB_DSN"},
		},
		&cli.StringFlag{
			Name:    "session-secret",
			Usage:   "secret signing the visitor session cookie",
			EnvVars: []string{"TRACKSITE_SESSION_SECRET"},
		},
		&cli.StringFlag{
			Name:    "api-token-hash",
			Usage:   "bcrypt hash of the operator api token, see hash-token",
			EnvVars: []string{"TRACKSITE_API_TOKEN_HASH"},
		},
		&cli.StringFlag{
			Name:    "telegram-token",
			Usage:   "telegram bot token",
			EnvVars: []string{"TRACKSITE_TG_TOKEN"},
		},
		&cli.Int64SliceFlag{
			Name:    "telegram-chat-id",
			Usage:   "telegram bot chat id or comma-separated ids",
			EnvVars: []string{"TRACKSITE_TG_CHAT_ID"},
		},
		&cli.StringFlag{
			Name:    "telegram-api-url",
			Usage:   "telegram bot api url",
			EnvVars: []string{"TRACKSITE_TG_API_URL"},
		},
	}
}

func serve(ctx *cli.Context) error {
	cfg := configFrom(ctx)

	var err error
	if cfg.SessionSecret == "" {
		slog.Warn("no session secret configured, sessions will not survive a restart")
		cfg.SessionSecret, err = randomSecret()
		if err != nil {
			return err
		}
	}

	db, err := newDatabase(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	notifier, err := newNotifier(cfg.Telegram.Token, cfg.Telegram.ChatIDs, cfg.Telegram.APIURL)
	if err != nil {
		return fmt.Errorf("failed to set up telegram: %w", err)
	}
	if _, ok := notifier.(noopNotifier); ok {
		slog.Warn("telegram is not configured, inquiries will not be announced")
	}

	handler := newServer(db, notifier, cfg.SessionSecret, cfg.APITokenHash)

	// Start HTTP handler.
	quit := make(chan os.Signal, 2)
	var wg sync.WaitGroup
	wg.Add(1)

	server := &http.Server{Addr: ":" + strconv.Itoa(cfg.Port), Handler: handler}

	go func() {
		defer wg.Done()

		slog.Info("serving", "address", server.Addr)

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "failed to start server: %s\n", err)
			quit <- os.Interrupt
		}
	}()

	signal.Notify(
		quit,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	<-quit

	slog.Info("Server shutting down...")

	go server.Close()

	wg.Wait()
	return nil
}
