package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cespare/crontab"
	"github.com/cespare/crontab/pkg/logx"
)

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Parse a specification and report its entries and sanity warnings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.useArgs(args)
			s, err := a.schedule()
			if err != nil {
				return err
			}
			r := newReport(s)
			if r.Warning != "" {
				a.log.Warn("schedule looks suspicious", logx.String("warning", r.Warning))
			}
			return renderReport(cmd.OutOrStdout(), a.cfg.Format, r)
		},
	}
}

func (a *app) newNextCmd() *cobra.Command {
	return a.newWalkCmd("next", "List the next activations of a specification", (*crontab.Schedule).Next)
}

func (a *app) newPrevCmd() *cobra.Command {
	return a.newWalkCmd("prev", "List the previous activations of a specification, latest first", (*crontab.Schedule).Prev)
}

type step func(s *crontab.Schedule, from time.Time) (time.Time, bool)

// newWalkCmd builds a command listing count successive activations from
// --from, walking with step. Entries firing at the same instant are listed
// together and count once.
func (a *app) newWalkCmd(use, short string, walk step) *cobra.Command {
	var from timeFlag
	cmd := &cobra.Command{
		Use:   use + " [file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.useArgs(args)
			s, err := a.schedule()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("count") {
				a.cfg.Count, _ = cmd.Flags().GetInt("count")
			}
			t := from.resolve(s.Location(), time.Now)
			var acts []activation
			for i := 0; i < a.cfg.Count; i++ {
				at, ok := walk(s, t)
				if !ok {
					break
				}
				for _, e := range s.Matching(at) {
					acts = append(acts, newActivation(at, e))
				}
				t = at
			}
			return renderActivations(cmd.OutOrStdout(), a.cfg.Format, acts)
		},
	}
	cmd.Flags().Var(&from, "from", `starting instant, "now" by default`)
	cmd.Flags().IntP("count", "n", 5, "number of activations to list; overrides count from the config")
	return cmd
}

func (a *app) newMatchCmd() *cobra.Command {
	var at timeFlag
	cmd := &cobra.Command{
		Use:   "match [file]",
		Short: "List the entries firing at an instant",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.useArgs(args)
			s, err := a.schedule()
			if err != nil {
				return err
			}
			t := at.resolve(s.Location(), time.Now).Truncate(time.Minute)
			var acts []activation
			for _, e := range s.Matching(t) {
				acts = append(acts, newActivation(t, e))
			}
			return renderActivations(cmd.OutOrStdout(), a.cfg.Format, acts)
		},
	}
	cmd.Flags().Var(&at, "at", `instant to test, "now" by default`)
	return cmd
}
