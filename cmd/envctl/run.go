package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dmitrymomot/envmanager/pkg/config"
	"github.com/dmitrymomot/envmanager/pkg/entry"
	"github.com/dmitrymomot/envmanager/pkg/environment"
	"github.com/dmitrymomot/envmanager/pkg/envmanager"
	"github.com/dmitrymomot/envmanager/pkg/kvstore"
	"github.com/dmitrymomot/envmanager/pkg/logger"
)

var (
	errUsage      = errors.New("usage")
	errUnknownAPI = errors.New("unknown api")
)

type command struct {
	args  string
	nargs [2]int
	run   func(ctx context.Context, r *envmanager.Registry, args []string, out io.Writer) error
}

var commands = map[string]command{
	"list":    {args: "", nargs: [2]int{0, 0}, run: listCmd},
	"current": {args: "<api>", nargs: [2]int{1, 1}, run: currentCmd},
	"select":  {args: "<api> <environment>", nargs: [2]int{2, 2}, run: selectCmd},
	"url":     {args: "<api> [path]", nargs: [2]int{1, 2}, run: urlCmd},
	"add":     {args: "<api> <environment> <url>", nargs: [2]int{3, 3}, run: addCmd},
	"remove":  {args: "<api> [environment]", nargs: [2]int{1, 2}, run: removeCmd},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("envctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env-file", "", "load variables from this .env file")
	table := fs.String("table", "", "pipe-delimited definitions file (overrides ENVCTL_TABLE)")
	definitions := fs.String("definitions", "", "YAML definitions file (overrides ENVCTL_DEFINITIONS)")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	rest := fs.Args()
	if len(rest) > 0 {
		rest = rest[1:]
	}
	if !ok || len(rest) < cmd.nargs[0] || len(rest) > cmd.nargs[1] {
		fs.Usage()
		return errUsage
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	if *table != "" {
		cfg.Table = *table
	}
	if *definitions != "" {
		cfg.Definitions = *definitions
	}

	log := newLogger(cfg, stderr)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.LogAttrs(ctx, slog.LevelWarn, "failed to close store", logger.Error(err))
		}
	}()

	registry, err := buildRegistry(cfg, store, log)
	if err != nil {
		return err
	}

	if err := cmd.run(ctx, registry, rest, stdout); err != nil {
		return err
	}
	return registry.Save()
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: envctl [flags] <command> [args]")
	fmt.Fprintln(out, "\ncommands:")
	for _, name := range []string{"list", "current", "select", "url", "add", "remove"} {
		fmt.Fprintf(out, "  %-8s %s\n", name, commands[name].args)
	}
	fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}

func newLogger(cfg config.Config, out io.Writer) *slog.Logger {
	// Validate has already accepted both settings.
	level, _ := logger.ParseLevel(cfg.LogLevel)
	format, _ := logger.ParseFormat(cfg.LogFormat)

	return logger.New(
		logger.WithEnvironment(environment.FromEnv(), cfg.AppID),
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(out),
		logger.WithAttr(logger.Store(string(cfg.Store))),
	)
}

func openStore(ctx context.Context, cfg config.Config) (kvstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return kvstore.NewMemoryStore(), noop, nil

	case config.StoreRedis:
		client, err := kvstore.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := kvstore.NewRedisStore(client, cfg.AppID, kvstore.WithRedisTimeout(cfg.Redis.OpTimeout))
		return store, store.Close, nil

	case config.StorePostgres:
		pool, err := kvstore.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store := kvstore.NewPostgresStore(pool, cfg.AppID,
			kvstore.WithTable(cfg.Postgres.Table),
			kvstore.WithPostgresTimeout(cfg.Postgres.OpTimeout),
		)
		if err := store.EnsureTable(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, func() error { pool.Close(); return nil }, nil

	default:
		store, err := kvstore.NewFileStore(cfg.AppID, kvstore.WithDir(cfg.StoreDir))
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	}
}

func buildRegistry(cfg config.Config, store kvstore.Store, log *slog.Logger) (*envmanager.Registry, error) {
	b := envmanager.NewBuilder(
		envmanager.WithLogger(log),
		envmanager.WithAppID(cfg.AppID),
	).SetStore(store)

	if cfg.Table != "" {
		f, err := os.Open(cfg.Table)
		if err != nil {
			return nil, err
		}
		_, err = b.AddTabular(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Table, err)
		}
	}

	if cfg.Definitions != "" {
		data, err := os.ReadFile(cfg.Definitions)
		if err != nil {
			return nil, err
		}
		if _, err := b.AddYAML(data); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Definitions, err)
		}
	}

	b.ProductionMap(cfg.ProductionMap)
	switch {
	case cfg.Production:
		b.Production()
	case len(cfg.ProductionMap) > 0:
		b.Production(productionFromEnv)
	}

	return b.Build()
}

// productionFromEnv reads APP_ENV each time production mode is evaluated.
func productionFromEnv() bool {
	return environment.FromEnv().IsProduction()
}

func listCmd(_ context.Context, r *envmanager.Registry, _ []string, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range r.Entries() {
		current := r.Selection().Current(e)
		for _, d := range e.Environments() {
			marker := " "
			if d.Environment == current {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s %s\t%s\n", e.Name(), marker, d.Environment, d.BaseURL)
		}
	}
	return w.Flush()
}

func currentCmd(_ context.Context, r *envmanager.Registry, args []string, out io.Writer) error {
	current, ok := r.CurrentEnvironment(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownAPI, args[0])
	}
	_, err := fmt.Fprintln(out, current)
	return err
}

func selectCmd(_ context.Context, r *envmanager.Registry, args []string, out io.Writer) error {
	api, env := args[0], args[1]
	e, ok := r.Entry(api)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownAPI, api)
	}
	if !e.Has(env) {
		return fmt.Errorf("environment %q is not declared for %s (have %s)", env, api, strings.Join(e.EnvironmentNames(), ", "))
	}

	sub := r.Subscribe(func(ev envmanager.ChangeEvent) {
		fmt.Fprintf(out, "%s: %s -> %s\n", ev.APIName, ev.OldEnvironment, ev.NewEnvironment)
	})
	defer sub.Cancel()

	return r.Select(api, env)
}

func urlCmd(_ context.Context, r *envmanager.Registry, args []string, out io.Writer) error {
	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	u, ok := r.URLFor(args[0], path)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownAPI, args[0])
	}
	_, err := fmt.Fprintln(out, u)
	return err
}

func addCmd(_ context.Context, r *envmanager.Registry, args []string, out io.Writer) error {
	p, err := entry.NewPair(args[1], args[2])
	if err != nil {
		return err
	}
	e, err := r.AddCustomEnvironments(args[0], p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, e.DelimitedText())
	return err
}

func removeCmd(_ context.Context, r *envmanager.Registry, args []string, _ io.Writer) error {
	if len(args) == 1 {
		return r.RemoveCustomEntry(args[0])
	}
	return r.Custom().RemoveEnvironment(args[0], args[1])
}
