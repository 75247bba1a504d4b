package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iwvelando/emi-reconcile/internal/config"
	"github.com/iwvelando/emi-reconcile/internal/logging"
	"github.com/iwvelando/emi-reconcile/internal/scenario"
	"github.com/iwvelando/emi-reconcile/internal/snapshot"
	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/generator"
	"github.com/iwvelando/emi-reconcile/pkg/output"
	"github.com/iwvelando/emi-reconcile/pkg/validation"
)

// runFiles collects repeated -run flags.
type runFiles []string

func (r *runFiles) String() string { return strings.Join(*r, ",") }

func (r *runFiles) Set(value string) error {
	*r = append(*r, value)
	return nil
}

// loadConfiguration reads the config file, falling back to defaults when the
// default file is absent.
func loadConfiguration(path string) (*config.Configuration, error) {
	if path == constants.DefaultConfigFile {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Default()
		}
	}
	return config.LoadConfiguration(path)
}

func main() {
	var runs runFiles
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	envFile := flag.String("env-file", ".env", "optional file of EMI_* environment overrides")
	flag.Var(&runs, "run", "captured run file to reconcile (repeatable; further files may follow as arguments)")
	random := flag.Int("random", 0, "number of generated scenarios to compute")
	seed := flag.Uint64("seed", 0, "seed for generated scenarios (0 keeps the configured or a random seed)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()
	runs = append(runs, flag.Args()...)

	// A missing .env is normal; the environment may already be set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file %s\", \"error\": \"%v\"}\n", *envFile, err)
		os.Exit(1)
	}

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if len(runs) == 0 && *random == 0 {
		logger.Fatal("nothing to do: pass -run files or -random N",
			zap.String("op", "main"),
		)
	}

	runner, err := scenario.NewRunner(conf, logger)
	if err != nil {
		logger.Fatal("failed to build scenario runner",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var results []*scenario.Result
	aborted := 0
	for _, path := range runs {
		run, err := snapshot.Load(path)
		if err != nil {
			logger.Fatal("failed to load run file",
				zap.String("op", "main"),
				zap.String("path", path),
				zap.Error(err),
			)
		}
		res, err := runner.RunSnapshot(ctx, run)
		if err != nil {
			logger.Error("run aborted",
				zap.String("op", "main"),
				zap.String("scenario", run.Name),
				zap.String("path", path),
				zap.Error(err),
			)
			aborted++
			continue
		}
		results = append(results, res)
	}

	if *random > 0 {
		var opts []generator.Option
		if *seed != 0 {
			opts = append(opts, generator.WithSeed(*seed))
		}
		gen, err := runner.Generator(opts...)
		if err != nil {
			logger.Fatal("failed to build value generator",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info(fmt.Sprintf("generating %d scenarios", *random),
			zap.String("op", "main"),
			zap.Uint64("seed", gen.Seed()),
		)

		inputs, err := runner.RandomInputs(gen, *random)
		if err != nil {
			logger.Fatal("failed to generate scenarios",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		for _, in := range inputs {
			res, err := runner.Run(ctx, in, scenario.Sources{})
			if err != nil {
				// Zero principal or tenure sits inside the published ranges.
				logger.Warn("skipping generated scenario",
					zap.String("op", "main"),
					zap.String("scenario", in.Name),
					zap.Error(err),
				)
				continue
			}
			results = append(results, res)
		}
	}

	if err := output.Format(os.Stdout, outputFormat, results); err != nil {
		logger.Fatal("failed to write results",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if code := exitCode(results, aborted); code != 0 {
		logger.Warn("reconciliation failed",
			zap.String("op", "main"),
			zap.Int("aborted", aborted),
			zap.Int("results", len(results)),
		)
		_ = logger.Sync()
		os.Exit(code)
	}
}

// exitCode is 2 when any run file aborted or any result failed.
func exitCode(results []*scenario.Result, aborted int) int {
	if aborted > 0 {
		return 2
	}
	for _, res := range results {
		if !res.Passed() {
			return 2
		}
	}
	return 0
}
