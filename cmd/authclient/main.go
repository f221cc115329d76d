package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.New(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Error().Err(err).Msg("authclient failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, c config.Config, args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 {
		usage(os.Stderr)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(os.Stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	displayAppname(c.GetAppName())

	app, err := newApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.service.Restore(ctx); err != nil {
		log.Debug().Err(err).Msg("no session restored")
	}
	return cmd.run(ctx, app, args[1:], out)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(os.Stderr, myFigure.String())
}
