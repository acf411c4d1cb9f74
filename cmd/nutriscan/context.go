package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"nutriscan/internal/barcode"
	"nutriscan/internal/config"
	"nutriscan/internal/detection"
	"nutriscan/internal/imagestore"
	"nutriscan/internal/logging"
	"nutriscan/internal/nutrition"
	"nutriscan/internal/openfoodfacts"
	"nutriscan/internal/pipeline"
	"nutriscan/internal/resultcache"
	"nutriscan/internal/sqlstore"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the process logger from config, honoring --log-level.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		effective := *cfg
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				effective.Logging.Level = level
			}
		}
		c.logger, c.loggerErr = logging.NewFromConfig(&effective)
	})
	return c.logger, c.loggerErr
}

// cliEnv holds the collaborators opened for a single command invocation.
type cliEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	cache   resultcache.Store
	records nutrition.Store
	source  *nutrition.Source
	db      *sqlstore.Store

	closers []io.Closer
}

// openEnv wires storage and the nutrition source for cfg. Callers must
// Close the returned env.
func (c *commandContext) openEnv(ctx context.Context) (*cliEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	env := &cliEnv{cfg: cfg, logger: logger}
	switch cfg.Storage.Backend {
	case config.StorageBackendSQLite:
		db, err := sqlstore.Open(ctx, cfg.Paths.Database)
		if err != nil {
			return nil, err
		}
		env.db = db
		env.closers = append(env.closers, db)
		env.cache = db.ResultCache()
		env.records = db.Nutrition()
	default:
		env.cache = resultcache.NewJSONCache(cfg.Paths.ResultCache, logger)
		env.records = nutrition.NewJSONStore(cfg.Paths.NutritionStore, logger)
	}

	client, err := openfoodfacts.New(cfg.Remote.BaseURL,
		openfoodfacts.WithUserAgent(cfg.Remote.UserAgent),
		openfoodfacts.WithTimeout(cfg.RemoteTimeout()),
		openfoodfacts.WithPageSize(cfg.Remote.PageSize),
	)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	remote := nutrition.Memoize(nutrition.NewOpenFoodFacts(client, logger), cfg.RemoteMemoTTL())
	env.source = nutrition.NewSource(env.records, remote, logger)
	return env, nil
}

// pipeline assembles the resolution pipeline with the configured barcode,
// detection and image storage backends.
func (e *cliEnv) pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	classifier, err := detection.New(ctx, e.cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := classifier.(io.Closer); ok {
		e.closers = append(e.closers, closer)
	}

	images, err := imagestore.New(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Detector: detection.NewResolver(classifier, e.logger),
		Source:   e.source,
		Cache:    e.cache,
		Images:   images,
	}
	if e.cfg.Barcode.Enabled {
		deps.Barcodes = barcode.NewResolver(barcode.NewZXing(), e.logger,
			barcode.WithRegionDetection(e.cfg.Barcode.RegionDetection))
	}
	return pipeline.New(deps, pipeline.Options{AllowManualBarcode: e.cfg.Barcode.AllowManualEntry}, e.logger)
}

func (e *cliEnv) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
