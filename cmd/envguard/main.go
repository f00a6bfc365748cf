package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/Azhovan/envguard"
	"github.com/Azhovan/envguard/internal/logging"
)

// Exit codes.
const (
	exitOK       = 0
	exitMissing  = 1
	exitUsage    = 2
	exitInternal = 3
)

type cliOptions struct {
	example       string
	path          string
	allowEmpty    bool
	strictExample bool
	logLevel      string
	asJSON        bool
	sources       bool
	secrets       []string
	command       []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &cliOptions{}

	app := kingpin.New("envguard", "Checks that every key listed in an example file is set in the environment")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	app.Flag("example", "Path to the file listing required keys").Short('e').Default(envguard.DefaultExample).StringVar(&opts.example)
	app.Flag("path", "Path to the primary file merged into the environment").Short('p').StringVar(&opts.path)
	app.Flag("allow-empty", "Accept required keys that are set but empty").BoolVar(&opts.allowEmpty)
	app.Flag("strict-example", "Fail when the example file cannot be read").BoolVar(&opts.strictExample)
	app.Flag("log-level", "Log level").Default("warn").EnumVar(&opts.logLevel, "debug", "info", "warn", "error")

	checkCmd := app.Command("check", "Validate the environment and print the required keys").Default()
	checkCmd.Flag("json", "Print as JSON").BoolVar(&opts.asJSON)
	checkCmd.Flag("sources", "Print where each value came from").BoolVar(&opts.sources)
	checkCmd.Flag("secret", "Redact the value of this key (repeatable)").StringsVar(&opts.secrets)

	runCmd := app.Command("run", "Validate the environment, then run a command with it")
	runCmd.Arg("command", "Command and arguments").Required().StringsVar(&opts.command)

	selected, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "envguard: %v\n", err)
		return exitUsage
	}

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "envguard: %v\n", err)
		return exitInternal
	}
	defer func() {
		_ = logger.Sync()
	}()

	res, err := envguard.New().
		WithOptions(envguard.Options{
			Example:          opts.example,
			Path:             opts.path,
			AllowEmptyValues: opts.allowEmpty,
		}).
		StrictExample(opts.strictExample).
		WithLogger(logger).
		Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "envguard: %v\n", err)
		if errors.Is(err, envguard.ErrMissingEnvVars) {
			return exitMissing
		}
		return exitInternal
	}

	switch selected {
	case runCmd.FullCommand():
		return execCommand(ctx, opts.command, stdout, stderr, logger)
	default:
		dumpOpts := []envguard.DumpOption{envguard.WithSecrets(opts.secrets...)}
		if opts.asJSON {
			dumpOpts = append(dumpOpts, envguard.AsJSON())
		}
		if opts.sources {
			dumpOpts = append(dumpOpts, envguard.WithSources())
		}
		if err := envguard.DumpResult(stdout, res, dumpOpts...); err != nil {
			fmt.Fprintf(stderr, "envguard: %v\n", err)
			return exitInternal
		}
		return exitOK
	}
}

// execCommand runs argv with the merged process environment and returns its exit code.
func execCommand(ctx context.Context, argv []string, stdout, stderr io.Writer, logger *zap.Logger) int {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()

	logger.Debug("starting command", zap.Strings("argv", argv))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "envguard: run %s: %v\n", argv[0], err)
		return exitInternal
	}
	return exitOK
}
