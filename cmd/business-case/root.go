package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/config"
	"github.com/iwvelando/business-case/internal/importer"
	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/sourcing"
	"github.com/iwvelando/business-case/internal/state"
	"github.com/iwvelando/business-case/internal/storage"
	"github.com/iwvelando/business-case/pkg/constants"
)

// Version is set at build time.
var Version = "dev"

// app carries what every command needs once the configuration is loaded.
type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg     *config.Configuration
	logger  *zap.Logger
	decoder *importer.Decoder

	port  storage.Store
	store *state.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "business-case",
		Short: "Business case and market analysis toolkit",
		Long: `business-case projects a business case month by month, summarizes it into
headline metrics and keeps its customer volumes in sync with a market analysis.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return a.init()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newProjectCmd(a),
		newValidateCmd(a),
		newMarketCmd(a),
		newImportCmd(a),
		newSyncCmd(a),
		newSetCmd(a),
		newDriverCmd(a),
		newSensitivityCmd(a),
		newProjectsCmd(a),
		newModeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return eris.Wrapf(err, "load env file %s", a.envFile)
		}
	}

	cfg, err := config.LoadConfiguration(a.configPath)
	if err != nil {
		return eris.Wrapf(err, "failed to load configuration at %s", a.configPath)
	}
	a.cfg = cfg

	logger, err := config.NewLogger(cfg.Logging, a.logLevel)
	if err != nil {
		return eris.Wrap(err, "failed to initialize logger")
	}
	a.logger = logger
	a.decoder = importer.NewDecoder(logger, cfg.MaxImportSizeBytes())
	return nil
}

func (a *app) close() error {
	var err error
	if a.port != nil {
		err = a.port.Close()
		a.port, a.store = nil, nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

func (a *app) metricsOptions() metrics.Options {
	return metrics.WithDiscountRate(a.cfg.Finance.DiscountRate)
}

// openStore opens the configured storage and loads the persisted state.
func (a *app) openStore(cmd *cobra.Command) (*state.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	port, err := storage.Open(cmd.Context(), a.logger, a.cfg.Storage.Driver, a.cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	store := state.NewStore(a.logger, port, state.Options{
		Syncer:  sourcing.NewSyncer(a.logger, a.cfg.Finance.AlignmentThreshold, nil),
		Decoder: a.decoder,
		Metrics: a.metricsOptions(),
	})
	if err := store.Load(cmd.Context()); err != nil {
		_ = port.Close()
		return nil, err
	}
	a.port, a.store = port, store
	return store, nil
}

// readDocument reads a file argument, or stdin for "-".
func (a *app) readDocument(cmd *cobra.Command, path string) ([]byte, importer.Format, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, importer.FormatAuto, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	raw, err := a.decoder.ReadAll(r)
	if err != nil {
		return nil, importer.FormatAuto, err
	}
	return raw, importer.FormatFromPath(path), nil
}

// businessData reads the business case from args[0], or from the store when
// no file is given.
func (a *app) businessData(cmd *cobra.Command, args []string) (*business.BusinessData, error) {
	if len(args) == 0 {
		store, err := a.openStore(cmd)
		if err != nil {
			return nil, err
		}
		d := store.BusinessData()
		if d == nil {
			return nil, eris.New("no business case loaded; pass a file or run import business first")
		}
		return d, nil
	}
	raw, format, err := a.readDocument(cmd, args[0])
	if err != nil {
		return nil, err
	}
	return a.decoder.BusinessData(raw, format)
}

// marketData reads a market analysis from path.
func (a *app) marketData(cmd *cobra.Command, path string) (*market.MarketData, error) {
	raw, format, err := a.readDocument(cmd, path)
	if err != nil {
		return nil, err
	}
	return a.decoder.MarketData(raw, format)
}
