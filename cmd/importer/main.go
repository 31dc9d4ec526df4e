package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"catalog-importer/pkg/container"
	"catalog-importer/pkg/logger"
)

// app holds the container built for the invoked command.
type app struct {
	c *container.Container
}

func (a *app) cleanup() {
	if a.c != nil {
		a.c.Cleanup()
	}
}

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCommand(a).ExecuteContext(ctx)
	a.cleanup()
	if err != nil {
		log.Error().Err(err).Msg("importer failed")
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Drive catalog import batches from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := container.NewContainer(cmd.Context())
			if err != nil {
				return err
			}
			a.c = c
			return nil
		},
	}

	root.AddCommand(
		newRunCommand(a),
		newProgressCommand(a),
		newResetCommand(a),
		newTokenCommand(),
	)
	return root
}
