package cli

import (
	"context"
	"fmt"
	"time"

	"xsim/internal/history"
	"xsim/internal/loop"
	"xsim/internal/session"
	"xsim/ui/screen"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
)

// finishTimeout bounds how long closing the window waits for the session
// to wind down.
const finishTimeout = 5 * time.Second

func newTrainCmd(opts *globalOptions) *cobra.Command {
	var (
		area       int
		typeID     string
		corrective int
		userID     int
		noHistory  bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Open the screening window and run a timed session",
		Example: `  # Hold baggage, all item types
  xsim train --area 2

  # Corrective assignment 17 in the cabin baggage area
  xsim train --area 1 --corrective 17`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if area < 1 {
				return fmt.Errorf("--area must be a positive area id")
			}
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if corrective > 0 {
				cfg = cfg.ForCorrective()
			}

			p := opts.prefs()
			if userID == 0 {
				userID = p.UserID()
			}
			client := opts.client(cfg, p, logger)

			engineOpts := []session.Option{
				session.WithLogger(logger),
				session.WithSummaryCache(p),
			}
			if !noHistory {
				store, err := history.Open(opts.dataDir)
				if err != nil {
					logger.Warn("session history disabled", "error", err)
				} else {
					defer store.Close()
					engineOpts = append(engineOpts, session.WithHistory(store))
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			lp := loop.New(cfg.FrameRate)
			params := session.Params{Area: area, TypeID: typeID, UserID: userID, CorrectiveID: corrective}
			engine, err := session.New(cfg, params, client, lp, engineOpts...)
			if err != nil {
				return err
			}

			title := fmt.Sprintf("X-SIM Training (Area %d)", area)
			if corrective > 0 {
				title = fmt.Sprintf("X-SIM Corrective #%d (Area %d)", corrective, area)
			}
			a := app.NewWithID("xsim")
			a.Settings().SetTheme(&screen.ScreeningTheme{})
			win := screen.New(a, engine, cfg, title, logger)

			go func() {
				<-ctx.Done()
				a.Quit()
			}()

			logger.Info("starting session", "area", area, "type", typeID, "corrective", corrective, "api", cfg.APIURL)
			// The loop outlives ctx so the final abort and submission still run
			// after an interrupt.
			lp.Start(context.WithoutCancel(ctx))
			engine.Start(ctx)
			win.ShowAndRun()

			engine.Abort()
			select {
			case <-engine.Done():
				engine.Wait()
			case <-time.After(finishTimeout):
				logger.Warn("session did not finish in time")
			}
			lp.Stop()
			return nil
		},
	}

	cmd.Flags().IntVar(&area, "area", 0, "screening area: 1 cabin, 2 hold, 3 cargo")
	cmd.Flags().StringVar(&typeID, "type", "all", "item type id, or all")
	cmd.Flags().IntVar(&corrective, "corrective", 0, "corrective assignment id")
	cmd.Flags().IntVar(&userID, "user", 0, "operator user id (default: cached by login)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the session locally")
	_ = cmd.MarkFlagRequired("area")
	return cmd
}
