package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cespare/crontab"
	"github.com/cespare/crontab/internal/config"
	"github.com/cespare/crontab/pkg/logx"
)

// app holds what every subcommand shares once the root command has loaded
// the configuration.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	v          *viper.Viper
	configFlag string
	cfg        config.Config
	log        logx.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, v: config.New()}
	root := &cobra.Command{
		Use:               "crontab",
		Short:             "Inspect and run parameterized cron specifications.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.persistentPreRunE,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFlag, "config", "", `config file (default "$HOME/.crontab.yaml")`)
	pf.StringP("file", "f", "", "specification file, - for stdin")
	pf.StringP("spec", "e", "", "inline specification; takes precedence over --file")
	pf.String("seed-name", "", "name used to spread H symbols, usually the job name")
	pf.String("format", "text", "output format text|json|yaml")
	pf.String("log-level", "info", "log level trace|debug|info|warn|error")
	pf.Bool("log-json", false, "log as JSON instead of console text")
	for key, flag := range map[string]string{
		"spec_file": "file",
		"spec":      "spec",
		"seed_name": "seed-name",
		"format":    "format",
		"log.level": "log-level",
		"log.json":  "log-json",
	} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		a.newCheckCmd(),
		a.newNextCmd(),
		a.newPrevCmd(),
		a.newMatchCmd(),
		a.newRunCmd(),
	)
	return root
}

func (a *app) persistentPreRunE(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFlag)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logx.New(a.errOut, cfg.Log.Level, cfg.Log.JSON)
	a.log.Debug("configuration loaded",
		logx.String("format", cfg.Format),
		logx.Int("count", cfg.Count),
		logx.Bool("seeded", cfg.SeedName != ""),
	)
	return nil
}

// useArgs lets a file argument take the place of --file and --spec.
func (a *app) useArgs(args []string) {
	if len(args) == 1 {
		a.cfg.Spec = ""
		a.cfg.SpecFile = args[0]
	}
}

var errNoSpec = errors.New("no specification: use --spec, --file or set spec_file in the config file")

// readSpec returns the specification text and the file it came from, if
// that file can be watched.
func (a *app) readSpec() (text, path string, err error) {
	if a.cfg.Spec == "" && a.cfg.SpecFile == "-" {
		b, err := io.ReadAll(a.in)
		if err != nil {
			return "", "", fmt.Errorf("read specification from stdin: %w", err)
		}
		return string(b), "", nil
	}
	text, ok, err := a.cfg.ReadSpec()
	if err != nil {
		return "", "", fmt.Errorf("read specification: %w", err)
	}
	if !ok {
		return "", "", errNoSpec
	}
	if a.cfg.Spec == "" {
		path = a.cfg.SpecFile
	}
	return text, path, nil
}

func (a *app) parseOptions() []crontab.Option {
	opts := []crontab.Option{crontab.WithLogger(a.log)}
	if a.cfg.SeedName != "" {
		opts = append(opts, crontab.WithSeedName(a.cfg.SeedName))
	}
	return opts
}

func (a *app) schedule() (*crontab.Schedule, error) {
	text, _, err := a.readSpec()
	if err != nil {
		return nil, err
	}
	return crontab.Parse(text, a.parseOptions()...)
}
