package cli

import (
	"fmt"
	"log/slog"

	xlog "xsim/internal/log"
	"xsim/internal/prefs"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var (
		token  string
		userID int
		logout bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Cache the service token and operator id",
		Long: `login stores a bearer token and user id in the preferences file.
They are sent with every request made by train, compose and summary.
Obtaining the token is left to the training service.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.prefs()
			switch {
			case logout:
				p.Delete(prefs.KeyToken)
				p.Delete(prefs.KeyUserID)
			case token == "" || userID <= 0:
				return fmt.Errorf("--token and --user are required")
			default:
				p.SetCredentials(token, userID)
			}
			if err := p.Save(); err != nil {
				return err
			}

			logger := xlog.New(cmd.ErrOrStderr(), slog.LevelInfo)
			logger.Info("credentials updated", "token", token, "user", userID, "path", p.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	cmd.Flags().IntVar(&userID, "user", 0, "operator user id")
	cmd.Flags().BoolVar(&logout, "clear", false, "remove cached credentials")
	return cmd
}
