// seedfs compresses files into seed containers and manages directories of
// them.
//
// Usage:
//
//	seedfs [--config file] [--log-level level] <command> [flags]
//
// Commands:
//
//	compress    -i in -o out        write the container for a file
//	decompress  -i in -o out        regenerate a file from its container
//	inspect     -i container        describe a container without regenerating it
//	analyze     -i in               entropy report and candidate table
//	scale       [--max-depth n]     ratios of growing Koch curves and patterns
//	put         --root dir name     store a file through the storage wrapper
//	get         --root dir name     read a file through the storage wrapper
//	ls          --root dir [path]   list a directory through the storage wrapper
//
// "-" reads stdin or writes stdout.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/absfs/seedfs"
	"github.com/absfs/seedfs/internal/config"
	"github.com/absfs/seedfs/internal/logging"
	"github.com/absfs/seedfs/seedpack"
)

// app carries what every command needs.
type app struct {
	config       *config.Config
	logger       *zap.Logger
	compressor   *seedpack.Compressor
	decompressor *seedpack.Decompressor
	stdin        io.Reader
	stdout       io.Writer
}

type command struct {
	summary string
	run     func(a *app, args []string) error
}

var commands = map[string]command{
	"compress":   {"write the container for a file", runCompress},
	"decompress": {"regenerate a file from its container", runDecompress},
	"inspect":    {"describe a container without regenerating it", runInspect},
	"analyze":    {"entropy report and candidate table", runAnalyze},
	"scale":      {"ratios of growing Koch curves and patterns", runScale},
	"put":        {"store a file through the storage wrapper", runPut},
	"get":        {"read a file through the storage wrapper", runGet},
	"ls":         {"list a directory through the storage wrapper", runList},
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var configPath, logLevel string

	flagSet := pflag.NewFlagSet("seedfs", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "YAML configuration file")
	flagSet.StringVar(&logLevel, "log-level", "", "override log.level")
	flagSet.Usage = func() { printHelp(flagSet) }
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(flagSet)
		return pflag.ErrHelp
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(cfg, logger, stdin, stdout)
	if err != nil {
		return err
	}
	if err := cmd.run(a, rest[1:]); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			logger.Error("command failed", zap.String("command", rest[0]), zap.Error(err))
		}
		return err
	}
	return nil
}

func newApp(cfg *config.Config, logger *zap.Logger, stdin io.Reader, stdout io.Writer) (*app, error) {
	engine, err := cfg.Engine()
	if err != nil {
		return nil, err
	}
	registry, err := seedpack.NewDefaultRegistry(engine)
	if err != nil {
		return nil, err
	}
	opts := []seedpack.Option{
		seedpack.WithLogger(logger),
		seedpack.WithMaxInputSize(engine.MaxInputSize),
	}
	compressor, err := seedpack.NewCompressor(registry, opts...)
	if err != nil {
		return nil, err
	}
	decompressor, err := seedpack.NewDecompressor(registry, opts...)
	if err != nil {
		return nil, err
	}
	return &app{
		config:       cfg,
		logger:       logger,
		compressor:   compressor,
		decompressor: decompressor,
		stdin:        stdin,
		stdout:       stdout,
	}, nil
}

// storage opens the storage wrapper over a host directory.
func (a *app) storage(root string) (*seedfs.FS, error) {
	if root == "" {
		return nil, errors.New("--root is required")
	}
	base, err := seedfs.NewDirFS(root)
	if err != nil {
		return nil, err
	}
	engine, err := a.config.Engine()
	if err != nil {
		return nil, err
	}
	s := a.config.Storage
	return seedfs.New(base, &seedfs.Config{
		Engine:         engine,
		SkipPatterns:   s.SkipPatterns,
		AutoDetect:     s.AutoDetect,
		StripExtension: s.StripExtension,
		MinSize:        s.MinSize,
		Logger:         a.logger,
	})
}

func (a *app) readInput(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("-i is required")
	}
	if path == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(path)
}

func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		return errors.New("-o is required")
	}
	if path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newFlagSet(name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seedfs %s %s\n\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: seedfs [flags] <command> [command flags]\n\nCommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-11s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, "\nFlags:\n%s", flagSet.FlagUsages())
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(word, "s"))
}
