package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/infrastructure/observability"
	"github.com/zatekoja/doctorconnect/pkg/config"
	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperrors.UserMessage(err))
		os.Exit(1)
	}
}

// cli carries the wired app from the pre-run hook to the commands
type cli struct {
	app      *app
	envFiles []string
	verbose  bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if closeErr := c.app.Close(); closeErr != nil {
			observability.LoggerFromContext(ctx).Warn().Err(closeErr).Msg("shutdown incomplete")
		}
	}
	if apperrors.IsCanceled(err) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "doctorconnect",
		Short:         "Book and manage DoctorConnect appointments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(c.envFiles) > 0 {
				if err := godotenv.Load(c.envFiles...); err != nil {
					return fmt.Errorf("failed to load env file: %w", err)
				}
			} else {
				_ = godotenv.Load()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			observability.InitLoggerTo(cmd.ErrOrStderr(), cfg.OTEL.ServiceName, cfg.Env, c.verbose)

			c.app, err = newApp(cmd.Context(), cfg)
			return err
		},
	}
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "Load environment from these files (default .env when present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log requests and debug output to stderr")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.registerCmd(),
		c.appointmentsCmd(),
		c.nextCmd(),
		c.transitionCmd("confirm", "Confirm a pending appointment (doctor)", entities.ActionConfirm),
		c.transitionCmd("reject", "Reject a pending appointment (doctor)", entities.ActionReject),
		c.transitionCmd("complete", "Mark a confirmed appointment as completed (doctor)", entities.ActionComplete),
		c.transitionCmd("cancel", "Cancel a pending or confirmed appointment (patient)", entities.ActionCancel),
		c.bookCmd(),
		c.reviewCmd(),
		c.reviewsCmd(),
		c.doctorsCmd(),
		c.topDoctorsCmd(),
		c.historyCmd(),
		c.lastCmd(),
		c.detailsCmd(),
	)
	return root
}
