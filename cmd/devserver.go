package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeryldev/sprintboard/internal/fakeapi"
)

var devServerCmd = &cobra.Command{
	Use:    "dev-server",
	Short:  "Serve an in-memory demo backend",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		token, _ := cmd.Flags().GetString("require-token")

		opts := []fakeapi.Option{fakeapi.WithLogger(logger)}
		if token != "" {
			opts = append(opts, fakeapi.WithToken(token))
		}
		srv := fakeapi.NewDemo(opts...)

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		fmt.Fprintf(cmd.OutOrStdout(), "Demo backend listening on %s (group 1)\n", addr)
		logger.WithField("addr", addr).Info("dev server started")
		return g.Wait()
	},
}

func init() {
	devServerCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	devServerCmd.Flags().String("require-token", "", "Reject requests without this bearer token")
	rootCmd.AddCommand(devServerCmd)
}
