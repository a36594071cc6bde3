package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/LilVoxy/fii_analytics/ETL/config"
	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/pipeline"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

var rootCmd = &cobra.Command{
	Use:   "fii-etl",
	Short: "Build yearly analyses of FII quarterly reports",
	Long: `fii-etl downloads the CVM quarterly report archives of real estate investment funds,
merges the per-topic tables of every year and exports the analyses as CSV files.
All settings come from FII_* environment variables.`,
	SilenceUsage: true,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and unpack the archives without processing them",
	RunE:  runFetch,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Process every configured year once",
	RunE:  runOnce,
}

var scheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "Process every configured year on FII_RUN_INTERVAL until interrupted",
	RunE:  runScheduled,
}

func init() {
	rootCmd.AddCommand(fetchCmd, onceCmd, scheduledCmd)
}

// openPipeline builds the pipeline from the environment
func openPipeline(ctx context.Context) (*pipeline.Pipeline, *utils.ETLLogger, error) {
	cfg := config.GetConfig()

	logger, err := utils.NewETLLogger(cfg.LogFile, cfg.EnableDetailedLogging)
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.New(ctx, cfg, logger, metrics.New(prometheus.DefaultRegisterer))
	if err != nil {
		logger.Close()
		return nil, nil, fmt.Errorf("error creating pipeline: %w", err)
	}
	return p, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, logger, err := openPipeline(ctx)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer p.Close()

	summary, err := p.Extractor.FetchArchives(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		logger.Error("%d of %d archives failed", summary.Failed, summary.Links)
	}
	return nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, logger, err := openPipeline(ctx)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer p.Close()

	summary, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running pipeline: %w", err)
	}

	logger.Info("All analyses exported: %d years succeeded, %d failed, %d skipped",
		summary.Succeeded, summary.Failed, summary.Skipped)
	return nil
}

func runScheduled(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, logger, err := openPipeline(ctx)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer p.Close()

	return p.StartScheduler(ctx, p.Config.RunInterval)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println("ETL runner failed:", err)
		os.Exit(1)
	}
}
