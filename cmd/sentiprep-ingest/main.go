// Command sentiprep-ingest runs stage 1: load the labeled dataset, keep the two
// admissible labels encoded as 1/0, split train/test and write the raw partitions
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

	ingestdom "sentiprep/internal/services/ingestion/domain"
	ingestmod "sentiprep/internal/services/ingestion/module"

	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet(ingestmod.AppName, flag.ContinueOnError)
	var (
		paramsPath  = fs.String("params", config.DefaultParamsFile, "path to the params YAML file")
		showVersion = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	info := version.Info(ingestmod.AppName)
	if *showVersion {
		_, _ = fmt.Fprintln(stdout, info.String())
		return 0
	}

	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = ingestmod.AppName
	}
	opts.StaticFields = map[string]string{"version": info.Version, "commit": info.Commit}
	logger.Init(opts)
	l := logger.Get()

	ctx = logger.WithRun(ctx, uuid.NewString(), ingestdom.Stage)
	log := logger.C(ctx)
	log.Info().Str("params", *paramsPath).Msg("starting")

	root := config.New().Prefix("SENTIPREP_")
	p, err := config.LoadParams(*paramsPath)
	if err != nil {
		log.Error().Err(err).Msg("params load failed")
		return perr.ExitCode(err)
	}
	p = p.ApplyEnv(root)

	m, err := ingestmod.New(modkit.Deps{Log: *l, Cfg: root, Params: p})
	if err != nil {
		ev := log.Error().Err(err).Str("code", perr.CodeOf(err).String())
		if e, ok := perr.As(err); ok && e.Field() != "" {
			ev = ev.Str("field", e.Field())
		}
		ev.Msg("ingestion setup failed")
		return perr.ExitCode(err)
	}
	if err := module.Register(m); err != nil {
		log.Error().Err(err).Msg("ingestion setup failed")
		return 1
	}
	defer module.Unregister(m.Name())

	rep, err := module.MustPortsOf[ingestdom.RunnerPort](m).Run(ctx)
	if err != nil {
		// the service already logged the failure with its context
		return perr.ExitCode(err)
	}
	log.Info().
		Int("kept", rep.Kept).
		Int("dropped", rep.Dropped).
		Int("train", rep.Train).
		Int("test", rep.Test).
		Dur("took", rep.Took).
		Msg("done")
	return 0
}
