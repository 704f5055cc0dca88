// seedexport exports host scene documents to renderer project files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/config"
	"github.com/Faultbox/seedexport/internal/export"
	"github.com/Faultbox/seedexport/internal/host/memhost"
	"github.com/Faultbox/seedexport/internal/logger"
	"github.com/Faultbox/seedexport/internal/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "export", "x":
		err = cmdExport(ctx, args)
	case "watch", "w":
		err = cmdWatch(ctx, args)
	case "info":
		err = cmdInfo(args)
	case "convert-texture", "tex":
		err = cmdConvertTexture(args)
	case "init-config":
		err = cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func printUsage() {
	fmt.Println(`seedexport - export scene documents to renderer project files

Usage:
  seedexport <command> [options]

Commands:
  export <scene.yaml>                       Export the scene (current frame or -frames)
  watch <scene.yaml>                        Re-export whenever the scene file changes
  info <scene.yaml>                         Show node counts and the keyed frame range
  convert-texture <src> <dir>               Convert one texture like an export would
  init-config [path]                        Write the default config

Export options:
  -config <file>        Config file (.yaml, .yml or .toml)
  -out <dir>            Output directory (<SceneName> is substituted)
  -frames <A-B>         Frame range
  -camera <node>        Camera to render through
  -transform-blur, -deform-blur, -camera-blur, -samples <n>

Examples:
  seedexport export shot010.yaml -frames 1-24 -out renders/<SceneName>
  seedexport watch shot010.yaml -debug
  seedexport convert-texture -converter command -command "maketx {src} -o {dest}" wood.tga textures`)
}

// exitCode maps an export error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, export.ErrCancelled):
		return 130
	case errors.Is(err, config.ErrInvalid):
		return 2
	default:
		return 1
	}
}

// setup parses the shared export flags, loads the config and starts logging.
func setup(name string, args []string) (*config.Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.BindFlags(fs)
	positional := parseArgs(fs, args)

	if len(positional) < 1 {
		return nil, nil, fmt.Errorf("usage: seedexport %s [options] <scene.yaml>", name)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, positional, nil
}

// parseArgs parses fs from args and returns the positional arguments.
// Flags may come before, between or after them.
func parseArgs(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		fs.Parse(args)
		args = fs.Args()
		if len(args) == 0 {
			return positional
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func cmdExport(ctx context.Context, args []string) error {
	cfg, rest, err := setup("export", args)
	if err != nil {
		return err
	}
	_, err = exportScene(ctx, cfg, rest[0])
	return err
}

// exportScene loads path and runs one export with cfg.
func exportScene(ctx context.Context, cfg *config.Config, path string) (*export.Result, error) {
	scene, err := memhost.Load(path)
	if err != nil {
		return nil, err
	}
	e, err := export.New(scene, cfg, &memhost.OBJWriter{Scene: scene}, &memhost.FlatBaker{Scene: scene})
	if err != nil {
		return nil, err
	}

	logger.Info("exporting", zap.String("scene", scene.SceneName()), zap.String("out", cfg.Output.Directory))
	res, err := e.Run(ctx)
	if res != nil {
		printSummary(res)
	}
	return res, err
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: seedexport info <scene.yaml>")
	}

	scene, err := memhost.Load(args[0])
	if err != nil {
		return err
	}

	stats := scene.Stats()
	types := make([]string, 0, len(stats))
	for t := range stats {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if stats[types[i]] != stats[types[j]] {
			return stats[types[i]] > stats[types[j]]
		}
		return types[i] < types[j]
	})

	fmt.Printf("Scene:   %s\n", scene.SceneName())
	fmt.Printf("Nodes:   %d\n", len(scene.Nodes()))
	fmt.Printf("Time:    %g\n", scene.CurrentTime())
	if start, end, ok := scene.KeyRange(); ok {
		fmt.Printf("Keys:    %g - %g\n", start, end)
	} else {
		fmt.Println("Keys:    none (static scene)")
	}
	fmt.Println()
	fmt.Println("Nodes by type:")
	for _, t := range types {
		fmt.Printf("  %-28s %d\n", t, stats[t])
	}
	return nil
}

func cmdConvertTexture(args []string) error {
	fs := flag.NewFlagSet("convert-texture", flag.ExitOnError)
	converter := fs.String("converter", "native", "Converter: native, command or copy")
	command := fs.String("command", "", "Command template with {src} and {dest}")
	overwrite := fs.Bool("overwrite", false, "Replace an existing converted file")
	positional := parseArgs(fs, args)

	if len(positional) < 2 {
		return errors.New("usage: seedexport convert-texture [options] <src> <dir>")
	}

	conv, err := texture.New(*converter, *command)
	if err != nil {
		return err
	}
	if conv == nil {
		return fmt.Errorf("converter %q does not convert", *converter)
	}
	out, err := conv.Convert(positional[0], positional[1], *overwrite)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func cmdInitConfig(args []string) error {
	cfg := config.Default()
	if len(args) > 0 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Println(filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}
