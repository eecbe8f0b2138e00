package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/magefree/mage-goldfish/internal/catalog"
	"github.com/magefree/mage-goldfish/internal/config"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/simulation"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	importPath = flag.String("import", "", "import a card export CSV into the catalog and exit")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting goldfish",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *importPath != "" {
		if err := importCards(ctx, cfg, *importPath, logger); err != nil {
			logger.Fatal("card import failed", zap.Error(err))
		}
		return
	}

	if err := run(ctx, cfg, logger); err != nil {
		var inputErr *simulation.InputError
		if errors.As(err, &inputErr) {
			logger.Error("invalid deck", zap.Error(err))
			os.Exit(2)
		}
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	cards, commander, err := loadDeck(ctx, cfg, logger)
	if err != nil {
		return err
	}

	driver := simulation.NewDriver(simulation.Config{
		Options: cfg.EngineOptions(),
		Workers: cfg.Simulation.Workers,
		Seed:    cfg.Simulation.Seed,
	}, logger)

	deck, err := driver.LoadDeck(cards, commander)
	if err != nil {
		return err
	}

	spinner := startSpinner(fmt.Sprintf("Simulating %d games of %d turns", cfg.Simulation.Games, cfg.Simulation.MaxTurn))
	summary, err := driver.Run(ctx, deck, cfg.Simulation.Games, cfg.Simulation.MaxTurn)
	if err != nil {
		spinner.fail(err)
		return err
	}
	spinner.success(fmt.Sprintf("%d games played, %d failed", summary.GamesPlayed, summary.FailedGames))
	printSummary(deck, summary)

	if cfg.ManaSim.Enabled {
		res, err := driver.SimulateDeckMana(ctx, deck, cfg.ManaSimParams())
		if err != nil {
			return fmt.Errorf("mana simulation: %w", err)
		}
		printManaResult(res)
	}

	if cfg.Replay.Directory != "" {
		replay, err := driver.Replay(ctx, deck, cfg.Replay.Game, cfg.Simulation.MaxTurn)
		if err != nil {
			return err
		}
		path, err := replay.SaveToFile(cfg.Replay.Directory)
		if err != nil {
			return fmt.Errorf("save replay: %w", err)
		}
		fields := []zap.Field{
			zap.String("path", path),
			zap.Int("game", cfg.Replay.Game),
			zap.Int("turns", replay.Size()),
		}
		if last := replay.Final(); last != nil {
			fields = append(fields, zap.Int("opponent_life", last.OpponentLife))
		}
		logger.Info("replay saved", fields...)
	}
	return nil
}

// loadDeck takes inline records when present and otherwise resolves deck
// names through the catalog.
func loadDeck(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]card.Record, *card.Record, error) {
	if len(cfg.Deck.Cards) > 0 {
		var commander *card.Record
		for i := range cfg.Deck.Cards {
			if cfg.Deck.Cards[i].Name == cfg.Deck.Commander {
				commander = &cfg.Deck.Cards[i]
				break
			}
		}
		return cfg.Deck.Cards, commander, nil
	}
	if cfg.Catalog.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("deck.cards is empty and no catalog.database_url is configured")
	}

	repo, err := catalog.Connect(ctx, cfg.Catalog.DatabaseURL, cfg.Catalog.MaxConns, logger)
	if err != nil {
		return nil, nil, err
	}
	defer repo.Close()
	return repo.LoadDeck(ctx, cfg.Deck.Names, cfg.Deck.Commander)
}

func importCards(ctx context.Context, cfg *config.Config, path string, logger *zap.Logger) error {
	if cfg.Catalog.DatabaseURL == "" {
		return fmt.Errorf("catalog.database_url is not configured")
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	entries, err := catalog.ParseCSV(file, logger)
	if err != nil {
		return err
	}
	repo, err := catalog.Connect(ctx, cfg.Catalog.DatabaseURL, cfg.Catalog.MaxConns, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	imported, failed, err := repo.Import(ctx, entries, 1000)
	if err != nil {
		return err
	}
	logger.Info("cards imported", zap.Int("imported", imported), zap.Int("failed", failed))
	return nil
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
