// Command sentiprep-preprocess runs stage 2: normalize the review text of the raw
// partitions and write the interim partitions used for training
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sentiprep/internal/core/version"
	"sentiprep/internal/modkit"
	"sentiprep/internal/modkit/module"
	"sentiprep/internal/platform/config"
	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/logger"

	prepdom "sentiprep/internal/services/preprocessing/domain"
	prepmod "sentiprep/internal/services/preprocessing/module"

	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet(prepmod.AppName, flag.ContinueOnError)
	var (
		paramsPath  = fs.String("params", config.DefaultParamsFile, "path to the params YAML file")
		showVersion = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	info := version.Info(prepmod.AppName)
	if *showVersion {
		_, _ = fmt.Fprintln(stdout, info.String())
		return 0
	}

	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = prepmod.AppName
	}
	opts.StaticFields = map[string]string{"version": info.Version, "commit": info.Commit}
	logger.Init(opts)
	l := logger.Get()

	ctx = logger.WithRun(ctx, uuid.NewString(), prepdom.Stage)
	log := logger.C(ctx)
	log.Info().Str("params", *paramsPath).Msg("starting")

	root := config.New().Prefix("SENTIPREP_")
	p, err := config.LoadParams(*paramsPath)
	if err != nil {
		log.Error().Err(err).Msg("params load failed")
		return perr.ExitCode(err)
	}
	p = p.ApplyEnv(root)

	// loads stop words and the lemma dictionary once before any row is touched
	m, err := prepmod.New(modkit.Deps{Log: *l, Cfg: root, Params: p})
	if err != nil {
		ev := log.Error().Err(err).Str("code", perr.CodeOf(err).String())
		if e, ok := perr.As(err); ok && e.Field() != "" {
			ev = ev.Str("field", e.Field())
		}
		ev.Msg("preprocessing setup failed")
		return perr.ExitCode(err)
	}
	if err := module.Register(m); err != nil {
		log.Error().Err(err).Msg("preprocessing setup failed")
		return 1
	}
	defer module.Unregister(m.Name())

	rep, err := module.MustPortsOf[prepdom.RunnerPort](m).Run(ctx)
	if err != nil {
		return perr.ExitCode(err)
	}
	log.Info().
		Int("train_rows", rep.Train.Output).
		Int("test_rows", rep.Test.Output).
		Int("dropped", rep.Train.DroppedMissing+rep.Train.DroppedEmpty+rep.Test.DroppedMissing+rep.Test.DroppedEmpty).
		Dur("took", rep.Took).
		Msg("done")
	return 0
}
