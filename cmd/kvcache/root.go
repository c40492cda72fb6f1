package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/kvcache"
	"github.com/unkn0wn-root/kvcache/codec"
	"github.com/unkn0wn-root/kvcache/config"
	zaplog "github.com/unkn0wn-root/kvcache/log/zap"
)

type rootFlags struct {
	configPath string
	name       string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:           "kvcache",
		Short:         "Inspect and edit a kvcache namespace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default ./kvcache.yaml)")
	root.PersistentFlags().StringVar(&f.name, "name", "", "cache name, overrides cache.name")
	root.PersistentFlags().DurationVar(&f.timeout, "timeout", 5*time.Second, "per-command timeout")

	root.AddCommand(
		getCmd(&f),
		setCmd(&f),
		delCmd(&f),
		keysCmd(&f),
		flushCmd(&f),
		statusCmd(&f),
		pingCmd(&f),
	)
	return root
}

// session is one opened cache plus the logger behind it.
type session struct {
	cache kvcache.Cache[string]
	log   *zap.Logger
}

func (s *session) close(ctx context.Context) {
	_ = s.cache.Close(ctx)
	_ = s.log.Sync()
}

func open(cmd *cobra.Command, f *rootFlags) (*session, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.name != "" {
		cfg.Cache.Name = f.name
	}
	if cfg.Cache.Name == "" {
		return nil, fmt.Errorf("a cache name is required (--name or cache.name)")
	}

	zl, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	opts, err := config.CacheOptions[string](cfg, codec.String{}, zaplog.New(zl))
	if err != nil {
		return nil, err
	}
	c, err := kvcache.New(opts)
	if err != nil {
		return nil, err
	}
	return &session{cache: c, log: zl}, nil
}

// run opens the cache, applies the timeout and closes everything after fn.
func run(f *rootFlags, fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd, f)
		if err != nil {
			return err
		}
		defer s.close(cmd.Context())

		if f.timeout > 0 {
			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()
			cmd.SetContext(ctx)
		}
		return fn(cmd, s, args)
	}
}

// newLogger builds a zap production logger writing to stderr.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = lc.Format
	zc.EncoderConfig.TimeKey = "ts"
	zc.OutputPaths = []string{"stderr"}
	lvl, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = lvl
	return zc.Build()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
