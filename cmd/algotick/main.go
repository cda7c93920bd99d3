package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantforge/algotick"
	"github.com/quantforge/algotick/feed"
	"github.com/quantforge/algotick/notification"
	"github.com/quantforge/algotick/storage"
	"github.com/quantforge/algotick/strategies"
)

// Command line flags
var (
	configFile   string
	strategyName string
	dataFile     string
	databaseFile string
	showProgress bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "algotick",
		Short:   "Clock-driven strategy backtesting",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "strategies",
		Short: "List available strategies",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range strategies.Names() {
				fmt.Println(name)
			}
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one backtest run",
		RunE:  runBacktest,
	}

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Run configuration file (YAML)")
	runCmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "Strategy name (overrides config)")
	runCmd.Flags().StringVarP(&dataFile, "data", "d", "", "Price CSV for the strategy symbol (overrides config)")
	runCmd.Flags().StringVar(&databaseFile, "db", "", "Persist fills and equity curve to this database file")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "Show tick progress")

	runCmd.MarkFlagRequired("config")

	return runCmd
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	runCfg, err := fileCfg.runConfig()
	if err != nil {
		return err
	}

	cal, err := fileCfg.calendar()
	if err != nil {
		return err
	}

	symbolFeeds := fileCfg.symbolFeeds()
	if dataFile != "" {
		symbolFeeds = []feed.SymbolFeed{{
			Symbol:    fileCfg.Strategy.Params.Symbol,
			File:      dataFile,
			Timeframe: "1d",
		}}
	}
	priceFeed, err := feed.NewCSVFeed(symbolFeeds...)
	if err != nil {
		return err
	}

	name := fileCfg.Strategy.Name
	if strategyName != "" {
		name = strategyName
	}
	strategy, err := strategies.Get(name, fileCfg.Strategy.Params)
	if err != nil {
		return err
	}

	options, err := buildOptions()
	if err != nil {
		return err
	}

	engine, err := algotick.New(runCfg, strategy, cal, priceFeed, options...)
	if err != nil {
		return err
	}

	if fileCfg.Telegram.Enabled {
		notifier, err := notification.NewTelegram(engine, notification.Settings{
			Token: fileCfg.Telegram.Token,
			Users: fileCfg.Telegram.Users,
		}, algotick.DefaultLog)
		if err != nil {
			return err
		}
		engine.SetNotifier(notifier)
		notifier.Start()
	}

	result, err := engine.Run(cmd.Context())
	engine.Summary()
	if err != nil {
		return fmt.Errorf("run finished in state %s: %w", result.State, err)
	}
	return nil
}

func buildOptions() ([]algotick.Option, error) {
	var options []algotick.Option

	if showProgress {
		options = append(options, algotick.WithProgressBar())
	}

	if databaseFile != "" {
		store, err := storage.NewFromSQLite(databaseFile, storage.DefaultConfig())
		if err != nil {
			return nil, err
		}
		options = append(options, algotick.WithStorage(store))
	} else {
		store, err := storage.FromMemory()
		if err != nil {
			return nil, err
		}
		options = append(options, algotick.WithStorage(store))
	}

	return options, nil
}
