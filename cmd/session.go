package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeryldev/sprintboard/internal/model"
	"github.com/jeryldev/sprintboard/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		tok := tokenInfo()
		watch, _ := cmd.Flags().GetBool("watch")
		out := cmd.OutOrStdout()

		if !watch {
			u, err := client.Me(commandContext(cmd))
			if err != nil {
				return err
			}
			return printUser(out, u, tok)
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()
		poller := session.NewPoller(client, cfg.PollInterval, logger)
		err = poller.Run(ctx, func(u *model.User) {
			if err := printUser(out, u, tok); err != nil {
				logger.WithError(err).Warn("printing user failed")
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// tokenInfo decodes the configured token. Tokens that are not JWTs are
// logged and otherwise ignored.
func tokenInfo() *session.Token {
	tok, err := session.TokenInfo(cfg.Token)
	if err != nil {
		if !errors.Is(err, session.ErrNoToken) {
			logger.WithError(err).Debug("token is not a readable JWT")
		}
		return nil
	}
	if tok.Expired(time.Now()) {
		logger.WithField("expired_at", tok.ExpiresAt).Warn("configured token has expired")
	}
	return tok
}

func printUser(out io.Writer, u *model.User, tok *session.Token) error {
	if jsonOutput {
		return printJSON(toUserJSON(u, tok))
	}
	fmt.Fprintf(out, "Name:        %s\n", u.FullName())
	fmt.Fprintf(out, "Email:       %s\n", u.Email)
	if u.Role != "" {
		fmt.Fprintf(out, "Role:        %s\n", u.Role)
	}
	fmt.Fprintf(out, "ID:          %d\n", u.ID)
	if tok != nil && !tok.ExpiresAt.IsZero() {
		state := "valid until"
		if tok.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(out, "Token:       %s %s\n", state, tok.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func init() {
	whoamiCmd.Flags().BoolP("watch", "w", false, "Keep polling and print the user whenever it changes")
	rootCmd.AddCommand(whoamiCmd)
}
