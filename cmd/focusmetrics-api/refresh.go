package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/focusmetrics/internal/config"
	"github.com/JonnyWalker81/focusmetrics/internal/logger"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute a user's productivity metrics",
	Long:  `Recompute the productivity metrics for one user, overwrite the cached entry and print the result as JSON.`,
	RunE:  runRefresh,
}

var refreshUserID string

func init() {
	refreshCmd.Flags().StringVarP(&refreshUserID, "user", "u", "", "User ID to refresh (required)")
	_ = refreshCmd.MarkFlagRequired("user")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := newLogger(cfg.Log)
	ctx := logger.WithUserID(logger.WithJob(cmd.Context(), "metrics_refresh_cli"), refreshUserID)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics, err := a.analytics.RefreshMetrics(ctx, refreshUserID)
	if err != nil {
		return fmt.Errorf("failed to refresh metrics: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(metrics)
}
