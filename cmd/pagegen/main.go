package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "pagegen",
		Usage:   "page type generator and page fetcher for descriptor-driven JSON APIs",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log verbosity level (eg: warn, info, debug)",
				Value:   "info",
				EnvVars: []string{"PAGEGEN_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
				Action: func(_ *cli.Context, s string) error {
					_, err := parseLogLevel(s)
					return err
				},
			},
		},
	}
	app.Commands = []*cli.Command{
		cmdGenerate,
		cmdLint,
		cmdFetch,
	}
	return app.Run(args)
}

// parseLogLevel accepts slog level names, in any case, with an optional
// offset such as "debug-2" or "warn+1".
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}
	return level, nil
}

// configLogger installs a JSON logger writing to w as the slog default.
func configLogger(cctx *cli.Context, w io.Writer) *slog.Logger {
	level, err := parseLogLevel(cctx.String("log-level"))
	if err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
