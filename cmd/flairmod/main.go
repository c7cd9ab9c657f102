// flairmod enforces submission flair across the subreddits it moderates:
// unflaired submissions are removed after a short grace period, restored
// when flaired, and permanently removed after a deadline. It also accepts
// moderator invitations, provided they grant the permissions it needs.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/flairmod/flairmod/moderation"
	"github.com/flairmod/flairmod/moderation/trackstore"
	"github.com/flairmod/flairmod/reddit"
	"github.com/flairmod/flairmod/util"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "flairmod",
		Usage:   "flair-enforcement moderation agent",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "reddit-client-id",
			Usage:    "OAuth client ID of the script app",
			Required: true,
			EnvVars:  []string{"REDDIT_CLIENT_ID"},
		},
		&cli.StringFlag{
			Name:     "reddit-client-secret",
			Usage:    "OAuth client secret of the script app",
			Required: true,
			EnvVars:  []string{"REDDIT_CLIENT_SECRET"},
		},
		&cli.StringFlag{
			Name:     "reddit-username",
			Usage:    "account the agent runs as",
			Required: true,
			EnvVars:  []string{"REDDIT_USERNAME"},
		},
		&cli.StringFlag{
			Name:     "reddit-password",
			Usage:    "password for the agent account",
			Required: true,
			EnvVars:  []string{"REDDIT_PASSWORD"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the agent",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "sqlite://data/flairmod/submissions.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"FLAIRMOD_METRICS_LISTEN"},
		},
		&cli.DurationFlag{
			Name:    "grace-period",
			Usage:   "how long a submission may stay unflaired before provisional removal",
			Value:   moderation.DefaultGracePeriod,
			EnvVars: []string{"FLAIRMOD_GRACE_PERIOD"},
		},
		&cli.DurationFlag{
			Name:    "flair-deadline",
			Usage:   "how long after creation an unflaired submission is removed for good",
			Value:   moderation.DefaultPermanentDeadline,
			EnvVars: []string{"FLAIRMOD_FLAIR_DEADLINE"},
		},
		&cli.DurationFlag{
			Name:    "reachback-horizon",
			Usage:   "how far back the new-submission scan looks",
			Value:   moderation.DefaultReachbackHorizon,
			EnvVars: []string{"FLAIRMOD_REACHBACK_HORIZON"},
		},
		&cli.DurationFlag{
			Name:    "poll-period",
			Usage:   "pause between successful passes; zero polls continuously",
			Value:   0,
			EnvVars: []string{"FLAIRMOD_POLL_PERIOD"},
		},
		&cli.DurationFlag{
			Name:    "error-pause",
			Usage:   "pause before restarting after a failed pass",
			Value:   20 * time.Second,
			EnvVars: []string{"FLAIRMOD_ERROR_PAUSE"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			slog.Info("setting up trace exporter", "endpoint", ep)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				log.Fatal("failed to create trace exporter", "error", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					slog.Error("failed to shutdown trace exporter", "error", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("flairmod"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),
					attribute.String("environment", os.Getenv("ENVIRONMENT")),
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		db, err := util.SetupDatabase(cctx.String("database-url"), 10)
		if err != nil {
			return err
		}
		store, err := trackstore.NewGormStore(db)
		if err != nil {
			return fmt.Errorf("initializing tracking store: %w", err)
		}

		client := reddit.NewAPIClient(reddit.AuthConfig{
			ClientID:     cctx.String("reddit-client-id"),
			ClientSecret: cctx.String("reddit-client-secret"),
			Username:     cctx.String("reddit-username"),
			Password:     cctx.String("reddit-password"),
		})
		username, err := client.Me(ctx)
		if err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
		logger.Info("authenticated", "username", username)

		eng := &moderation.Engine{
			Logger: logger,
			Client: client,
			Store:  store,
			Policy: moderation.Policy{
				GracePeriod:       cctx.Duration("grace-period"),
				PermanentDeadline: cctx.Duration("flair-deadline"),
				ReachbackHorizon:  cctx.Duration("reachback-horizon"),
			},
			Username: username,
		}

		go func() {
			if err := runMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		runLoop(ctx, logger, eng, cctx.Duration("poll-period"), cctx.Duration("error-pause"))
		return nil
	},
}

// runLoop executes passes forever. A failed or panicking pass is logged and
// retried from scratch after a pause; every engine operation re-derives its
// decisions from current platform and store state, so restarting mid-way is
// safe.
func runLoop(ctx context.Context, logger *slog.Logger, eng *moderation.Engine, pollPeriod, errorPause time.Duration) {
	for {
		if err := runPass(ctx, eng); err != nil {
			loopErrors.Inc()
			logger.Error("pass failed, restarting", "err", err)
			time.Sleep(errorPause)
			continue
		}
		if pollPeriod > 0 {
			time.Sleep(pollPeriod)
		}
	}
}

func runPass(ctx context.Context, eng *moderation.Engine) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pass panicked: %v", r)
		}
	}()

	if err := eng.CheckNewSubmissions(ctx); err != nil {
		return err
	}
	if err := eng.ReconcileTracked(ctx); err != nil {
		return err
	}
	return eng.AcceptModeratorInvites(ctx)
}
