// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aletheiaproj/aletheia/internal/cache"
	"github.com/aletheiaproj/aletheia/internal/config"
	"github.com/aletheiaproj/aletheia/internal/engine"
	"github.com/aletheiaproj/aletheia/internal/logging"
	"github.com/aletheiaproj/aletheia/internal/stats"
	"github.com/aletheiaproj/aletheia/internal/verify"
)

// app carries state shared by subcommands once the root has initialized.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "aletheia",
		Short: "Verify and normalize content credentials (C2PA manifests)",
		Long: `aletheia asks a trust verification engine for the C2PA manifest store of a
media file and reshapes it into a small result: a status, the creator, title,
date and tool claims, the edit history and the embedded thumbnail.

A result is printed for every input, including media without credentials
(status "none") and failed verifications (status "error").`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		newVerifyCmd(a),
		newNormalizeCmd(a),
		newServeCmd(a),
		newHTTPCmd(a),
		newStatsCmd(a),
		newValidateCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// execEngine builds the external verifier engine from configuration.
func (a *app) execEngine() *engine.Exec {
	e := engine.NewExec(a.cfg.Engine.Command, a.cfg.Engine.Args...)
	e.Timeout = a.cfg.EngineTimeout()
	e.Logger = a.logger.Named("engine")
	return e
}

// openStats opens the configured statistics store.
func (a *app) openStats() (stats.Store, error) {
	if a.cfg.Stats.Path == "" {
		return stats.NewMemory(), nil
	}
	store, err := stats.OpenSQLite(a.cfg.Stats.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// redisPingTimeout bounds the startup connectivity check.
const redisPingTimeout = 5 * time.Second

// openCache opens the configured result cache. A redis server that does not
// answer a ping fails startup. The returned close function is never nil.
func (a *app) openCache() (cache.Cache, func() error, error) {
	noop := func() error { return nil }
	switch a.cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemory(a.cfg.Cache.MaxEntries, nil), noop, nil
	case config.CacheRedis:
		r, err := cache.NewRedis(a.cfg.Cache.Redis.Addr, a.cfg.Cache.Redis.Password, a.cfg.Cache.Redis.DB)
		if err != nil {
			return nil, noop, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, noop, fmt.Errorf("redis cache at %s unreachable: %w", a.cfg.Cache.Redis.Addr, err)
		}
		return r, r.Close, nil
	default:
		return cache.Nop{}, noop, nil
	}
}

// newService assembles a verify.Service over e with the configured stats
// store and, when withCache is set, the configured cache. Callers must run
// the returned close function.
func (a *app) newService(e engine.Engine, withCache bool) (*verify.Service, func(), error) {
	store, err := a.openStats()
	if err != nil {
		return nil, nil, err
	}
	opts := []verify.Option{
		verify.WithStats(store),
		verify.WithLogger(a.logger.Named("verify")),
	}

	closeCache := func() error { return nil }
	if withCache {
		c, closeFn, err := a.openCache()
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		closeCache = closeFn
		opts = append(opts, verify.WithCache(c, a.cfg.CacheTTL()))
	}

	closeAll := func() {
		if err := closeCache(); err != nil {
			a.logger.Warn("close cache", zap.Error(err))
		}
		if err := store.Close(); err != nil {
			a.logger.Warn("close stats store", zap.Error(err))
		}
	}
	return verify.NewService(e, opts...), closeAll, nil
}
