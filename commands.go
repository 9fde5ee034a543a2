package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "run the web server (default)",
			Action: serve,
		},
		{
			Name:  "tracks",
			Usage: "manage tracks",
			Subcommands: []*cli.Command{
				{
					Name:  "add",
					Usage: "add a track, genres are taken from the description",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "title", Required: true},
						&cli.StringFlag{Name: "url", Usage: "youtube url", Required: true},
						&cli.StringFlag{Name: "description", Usage: "comma separated genres"},
						&cli.BoolFlag{Name: "featured"},
					},
					Action: addTrack,
				},
			},
		},
		{
			Name:  "genres",
			Usage: "manage genres",
			Subcommands: []*cli.Command{
				{
					Name:   "resync",
					Usage:  "recompute the genres of every track from its description",
					Action: resyncGenres,
				},
			},
		},
		{
			Name:   "purge-counters",
			Usage:  "remove expired rate limit counters",
			Action: purgeCounters,
		},
		{
			Name:      "hash-token",
			Usage:     "print the bcrypt hash of an operator api token",
			ArgsUsage: "<token>",
			Action:    hashToken,
		},
	}
}

func openDatabase(ctx *cli.Context) (*database, error) {
	cfg := configFrom(ctx)
	return newDatabase(cfg.Database.Driver, cfg.Database.DSN)
}

func addTrack(ctx *cli.Context) error {
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	track := &Track{
		Title:       ctx.String("title"),
		SourceURL:   ctx.String("url"),
		Description: ctx.String("description"),
		IsFeatured:  ctx.Bool("featured"),
		CreatedAt:   time.Now(),
	}
	err = db.SaveTrack(ctx.Context, track)
	if err != nil {
		return err
	}

	if _, ok := track.EmbedURL(); !ok {
		slog.Warn("track url has no embeddable player", "url", track.SourceURL)
	}
	fmt.Fprintf(ctx.App.Writer, "added %s as /track/%s with %d genres\n", track, track.Slug, len(track.Genres))
	return nil
}

func resyncGenres(ctx *cli.Context) error {
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tracks, err := db.GetAllTracks(ctx.Context)
	if err != nil {
		return err
	}

	for _, track := range tracks {
		err = db.SyncTrackGenres(ctx.Context, track)
		if err != nil {
			return err
		}
		slog.Debug("synced genres", "track", track.Slug, "genres", len(track.Genres))
	}
	slog.Info("genres resynced", "tracks", len(tracks))
	return nil
}

func purgeCounters(ctx *cli.Context) error {
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.PurgeCounters(ctx.Context, time.Now())
	if err != nil {
		return err
	}
	slog.Info("purged counters", "count", n)
	return nil
}

func hashToken(ctx *cli.Context) error {
	token := ctx.Args().First()
	if token == "" {
		return errors.New("token is missing")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, string(hash))
	return nil
}
