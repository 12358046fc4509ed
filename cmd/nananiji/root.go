package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	nananiji "github.com/komori-n/nananiji-calculator"
	"github.com/komori-n/nananiji-calculator/blobstore"
	"github.com/komori-n/nananiji-calculator/codec"
	"github.com/komori-n/nananiji-calculator/internal/evaluate"
	"github.com/komori-n/nananiji-calculator/preset"
)

type rootFlags struct {
	listName    string
	writeFile   bool
	readFile    bool
	searchDepth int
	denomCut    int64
	allowSplit  bool
	storeDir    string
	configPath  string
	verify      bool
	logLevel    string
	codecName   string
	compression string
}

// env is what every command needs once flags and config are resolved.
type env struct {
	cfg      Config
	store    blobstore.BlobStore
	logger   *nananiji.Logger
	encoding []nananiji.Option
}

// Close releases the store when it holds resources.
func (e *env) Close() error {
	if c, ok := e.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "nananiji [flags] [TARGET_NUM]",
		Short: "Write integers as arithmetic expressions over a fixed set of digits",
		Long: `nananiji finds an expression using only + - * / and the digit splits of
a base numeral (227, 334 or 264) that evaluates exactly to the target.

Building a generator takes a few seconds; store it once with -w and answer
later queries with -r.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, &f, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.listName, "list-name", "l", string(preset.Nananiji), "the name of the number set (nananiji, hanshin, kyojin)")
	pf.BoolVarP(&f.readFile, "read-file", "r", false, "load the pre-calculated generator instead of building it")
	pf.IntVarP(&f.searchDepth, "search-depth", "d", nananiji.DefaultSearchDepth, "the depth of search")
	pf.Int64VarP(&f.denomCut, "denom-cut", "c", nananiji.DefaultDenomCut, "exclusive bound on intermediate denominators")
	pf.BoolVarP(&f.allowSplit, "allow-split", "a", false, "allow splits like 3-34 (hanshin and kyojin only)")
	pf.StringVar(&f.storeDir, "store-dir", "", "directory of pre-calculated generators (local backend)")
	pf.StringVar(&f.configPath, "config", "", "YAML config file")
	pf.BoolVar(&f.verify, "verify", false, "re-evaluate every expression before printing it")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.codecName, "codec", "", "snapshot codec for -w ("+strings.Join(codec.Names(), ", ")+")")
	pf.StringVar(&f.compression, "compression", "", "snapshot compression for -w (none, lz4, zstd)")

	cmd.Flags().BoolVarP(&f.writeFile, "write-file", "w", false, "save the generator for later -r runs")

	cmd.AddCommand(newServeCmd(&f))
	return cmd
}

func (f *rootFlags) env(ctx context.Context) (*env, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.storeDir != "" {
		cfg.Store.Backend = "local"
		cfg.Store.Dir = f.storeDir
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.codecName != "" || f.compression != "" {
		if f.codecName != "" {
			cfg.Store.Codec = f.codecName
		}
		if f.compression != "" {
			cfg.Store.Compression = f.compression
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}
	encoding, err := cfg.Store.encoding()
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := nananiji.NewTextLogger(level)
	if strings.EqualFold(cfg.Log.Format, "json") {
		logger = nananiji.NewJSONLogger(level)
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, store: store, logger: logger, encoding: encoding}, nil
}

func (f *rootFlags) options(e *env) []nananiji.Option {
	return append([]nananiji.Option{
		nananiji.WithSearchDepth(f.searchDepth),
		nananiji.WithDenomCut(f.denomCut),
		nananiji.WithLogger(e.logger),
	}, e.encoding...)
}

func runRoot(cmd *cobra.Command, f *rootFlags, args []string) error {
	ctx := cmd.Context()

	name, err := preset.Parse(f.listName)
	if err != nil {
		return err
	}
	if !f.writeFile && len(args) == 0 {
		return cmd.Usage()
	}

	var target int64
	if len(args) == 1 {
		target, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TARGET_NUM %q: %w", args[0], err)
		}
	}

	e, err := f.env(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()

	blob := preset.BlobName(name, f.allowSplit)
	var gen *nananiji.Generator
	if f.readFile {
		gen, err = nananiji.Load(ctx, e.store, blob, f.options(e)...)
	} else {
		gen, err = nananiji.New(ctx, name, f.allowSplit, f.options(e)...)
	}
	if err != nil {
		return err
	}

	if f.writeFile {
		if err := gen.Save(ctx, e.store, blob); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%d values, %d rules)\n", blob, gen.Len(), len(gen.Rules()))
		return nil
	}

	expr, err := gen.Generate(target)
	if err != nil {
		return err
	}
	if f.verify {
		ok, err := evaluate.Equals(expr, target)
		if err != nil {
			return fmt.Errorf("verify %s: %w", expr, err)
		}
		if !ok {
			return fmt.Errorf("verify: %s does not evaluate to %d", expr, target)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", expr, target)
	return nil
}
