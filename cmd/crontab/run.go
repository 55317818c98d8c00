package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cespare/crontab"
	"github.com/cespare/crontab/internal/runner"
	"github.com/cespare/crontab/pkg/logx"
)

func (a *app) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "Log every activation of a specification as it happens",
		Long:  "Run waits for the activations of a specification and logs each firing entry with its parameters.\nA specification file is reloaded when it changes.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.useArgs(args)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx)
		},
	}
}

func (a *app) run(ctx context.Context) error {
	text, path, err := a.readSpec()
	if err != nil {
		return err
	}
	load := func() (*crontab.Schedule, error) {
		if path == "" {
			// Inline and stdin specifications cannot change.
			return crontab.Parse(text, a.parseOptions()...)
		}
		t, _, err := a.readSpec()
		if err != nil {
			return nil, err
		}
		return crontab.Parse(t, a.parseOptions()...)
	}
	r, err := runner.New(runner.Config{
		Path: path,
		Load: load,
		Fire: a.logActivation,
		Log:  a.log.With(logx.String("component", "runner")),
	})
	if err != nil {
		return err
	}
	if w := r.Schedule().SanityWarning(); w != "" {
		a.log.Warn("schedule looks suspicious", logx.String("warning", w))
	}
	return r.Run(ctx)
}

func (a *app) logActivation(at time.Time, entries []*crontab.Entry) {
	for _, e := range entries {
		fields := []logx.Field{
			logx.Time("at", at),
			logx.Int("line", e.Line()),
			logx.String("rule", e.Rule()),
		}
		if p := e.Params(); len(p) > 0 {
			fields = append(fields, logx.Any("params", p))
		}
		a.log.Info("activation", fields...)
	}
}
