package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lupertojoele-max/cbk-sub000/internal/catalog"
	"github.com/lupertojoele-max/cbk-sub000/internal/config"
	pkgcatalog "github.com/lupertojoele-max/cbk-sub000/pkg/catalog"
)

// app carries the state shared by every subcommand once the root command has
// loaded the configuration.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "cbk",
		Short:        "Catalog filter engine for the CBK go-kart shop",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file (default ./cbk.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newScrapeCmd(a),
		newValidateCmd(a),
		newQueryCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newVersionCmd(),
	)
	return root
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}

// catalogSource returns the configured product document, or the embedded
// sample when no path is set.
func (a *app) catalogSource() *pkgcatalog.Catalog {
	if a.cfg.Catalog.Path == "" {
		return pkgcatalog.NewCatalog()
	}
	return pkgcatalog.Open(a.cfg.Catalog.Path)
}

func (a *app) rules() (*catalog.RuleSet, error) {
	if a.cfg.Catalog.RulesPath == "" {
		return catalog.DefaultRules()
	}
	return catalog.LoadRulesFile(a.cfg.Catalog.RulesPath)
}

func (a *app) engine(metrics *catalog.Metrics) (*catalog.Engine, *pkgcatalog.Catalog, error) {
	rules, err := a.rules()
	if err != nil {
		return nil, nil, err
	}
	src := a.catalogSource()
	return catalog.NewEngine(src, rules, a.logger, metrics), src, nil
}
