// Command galdrd runs the webview bridge as a standalone process: it loads
// options from the environment, assembles a dispatcher, and serves wire
// calls over the websocket bridge until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/rthomasv3/Galdr/bridge"
	"github.com/rthomasv3/Galdr/codec"
	"github.com/rthomasv3/Galdr/config"
	"github.com/rthomasv3/Galdr/dispatch"
	"github.com/rthomasv3/Galdr/middleware"
	"github.com/rthomasv3/Galdr/provider"
	"github.com/rthomasv3/Galdr/registry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := config.Load()
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", opts.LogLevel, err)
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	commands := registry.New()
	commands.Register(registry.Descriptor{
		Name:    "Echo",
		Params:  []registry.ParamSpec{registry.Arg[string]("text")},
		Result:  registry.Result[string](),
		Handler: func(ctx context.Context, args []any) (any, error) { return args[0], nil },
	})
	commands.Register(registry.Descriptor{
		Name:    "Ping",
		Handler: func(ctx context.Context, args []any) (any, error) { return nil, nil },
	})

	mw := []middleware.Middleware{middleware.Logging(logger)}
	if opts.RateLimit > 0 {
		mw = append(mw, middleware.RateLimit(opts.RateLimit, opts.RateBurst))
	}

	d, err := dispatch.New(dispatch.Config{
		Commands:        commands,
		Codecs:          codec.NewRegistry(),
		Provider:        provider.New(),
		Middleware:      mw,
		Logger:          logger,
		LenientEnvelope: opts.LenientEnvelope,
	})
	if err != nil {
		return err
	}

	srv := bridge.NewServer(d, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", opts.ListenAddr).Msg("bridge listening")
		if err := srv.Listen(opts.ListenAddr); err != nil {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		return srv.Close(opts.ShutdownTimeout)
	}
}
