// cmd/reconciler/evaluate.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	apperrors "cauldron-reconciler/internal/common/errors"
)

type evaluateOptions struct {
	cauldronID  string
	date        string
	drainVolume float64
	tolerance   float64
	threshold   float64
}

func (a *app) newEvaluateCommand() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run one discrepancy evaluation and print the result as JSON",
		Example: `  reconciler evaluate --cauldron-id cauldron_001 --date 2025-11-01 --drain-volume 100
  reconciler evaluate --cauldron-id cauldron_001 --date 2025-11-01 --drain-volume 100 --tolerance 0.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tolerance, threshold *float64
			if cmd.Flags().Changed("tolerance") {
				tolerance = &opts.tolerance
			}
			if cmd.Flags().Changed("threshold") {
				threshold = &opts.threshold
			}
			return a.runEvaluate(cmd, opts, tolerance, threshold)
		},
	}

	cmd.Flags().StringVar(&opts.cauldronID, "cauldron-id", "", "cauldron identifier (required)")
	cmd.Flags().StringVar(&opts.date, "date", "", "date or timestamp of the drain (required)")
	cmd.Flags().Float64Var(&opts.drainVolume, "drain-volume", 0, "measured drain volume (required)")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "relative tolerance (default from config)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "absolute threshold (default from config)")
	_ = cmd.MarkFlagRequired("cauldron-id")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("drain-volume")

	return cmd
}

func (a *app) runEvaluate(cmd *cobra.Command, opts *evaluateOptions, tolerance, threshold *float64) error {
	for name, v := range map[string]float64{
		"drain-volume": opts.drainVolume,
		"tolerance":    opts.tolerance,
		"threshold":    opts.threshold,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("--%s must be a finite number", name)
		}
	}

	svc, shutdown, err := a.buildService()
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	req := svc.NewRequest(opts.cauldronID, opts.date, opts.drainVolume, tolerance, threshold)
	result, err := svc.Evaluate(cmd.Context(), req)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err != nil {
		if stdErr, ok := apperrors.AsStandardError(err); ok {
			_ = enc.Encode(apperrors.ErrorResponse{Error: stdErr.Message})
			return fmt.Errorf("evaluation failed: %s", stdErr.Code)
		}
		return err
	}
	return enc.Encode(result)
}
