package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/catalog"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/collector"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/config"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/projection"
	"github.com/jasonmangold/nest-egg-explorer-tool/internal/report"
	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/constants"
	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/output"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	savings := flag.Float64("savings", 0, "current retirement savings")
	spending := flag.Float64("spending", 0, "planned monthly spending")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	pdfPath := flag.String("pdf", "", "write the projection report PDF to this path")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the lead collector instead of a projection")
	addr := flag.String("addr", "", "collector listen address override")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *serve {
		runCollector(logger, conf, *addr)
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal("invalid output format: "+outputFormat,
			zap.String("op", "main"),
		)
	}

	engine := projection.NewEngine(logger, conf.ProjectionAssumptions())
	points := engine.Project(*savings, *spending)
	depletion := engine.DepletionTime(*savings, *spending)
	safe := engine.SafeMonthlyWithdrawal(*savings)

	summary := output.Summary{
		CurrentSavings:        *savings,
		MonthlySpending:       *spending,
		SafeMonthlyWithdrawal: safe,
		Depletion:             depletion,
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, summary, points)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, points)
	}

	if *pdfPath != "" {
		data, err := report.Generate(report.Inputs{
			CurrentSavings:        *savings,
			MonthlySpending:       *spending,
			SafeMonthlyWithdrawal: safe,
			Depletion:             depletion,
			Points:                points,
		})
		if err != nil {
			logger.Fatal("failed to generate PDF report",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if err := os.WriteFile(*pdfPath, data, 0644); err != nil {
			logger.Fatal("failed to write PDF report",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info("wrote PDF report",
			zap.String("op", "main"),
			zap.String("path", *pdfPath),
		)
	}
}

func runCollector(logger *zap.Logger, conf *config.Configuration, addrOverride string) {
	addr := conf.Collector.Address
	if addrOverride != "" {
		addr = addrOverride
	}
	if addr == "" {
		addr = constants.DefaultCollectorAddress
	}

	store, err := collector.OpenStore(conf.Collector.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open leads store",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = store.Close()
	}()

	var cat *catalog.Catalog
	if conf.Collector.CatalogPath != "" {
		cat, err = catalog.Open(conf.Collector.CatalogPath, logger)
		if err != nil {
			logger.Fatal("failed to open document catalog",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer func() {
			_ = cat.Close()
		}()
	}

	handler := collector.NewHandler(logger, conf.Collector, store, cat)
	logger.Info("lead collector listening",
		zap.String("op", "main"),
		zap.String("addr", addr),
	)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("collector server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
