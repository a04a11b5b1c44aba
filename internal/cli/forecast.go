package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ThimethZ03/utility-billing-system2/internal/api/dto"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/validator"
	"github.com/ThimethZ03/utility-billing-system2/internal/services"
	"github.com/ThimethZ03/utility-billing-system2/pkg/client"
	"github.com/spf13/cobra"
)

func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast next month's usage",
	}

	cmd.AddCommand(newForecastPredictCmd())
	cmd.AddCommand(newForecastRemoteCmd())
	cmd.AddCommand(newForecastStoredCmd())
	cmd.AddCommand(newForecastBranchesCmd())

	return cmd
}

func newForecastPredictCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:         "predict",
		Short:       "Forecast a series from a JSON file without contacting the server",
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := readSeriesFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			f := services.NewForecastEngine().Forecast(dto.ToSeries(points))
			if f == nil {
				return fmt.Errorf("need at least %d monthly data points, got %d", forecast.MinPoints, len(points))
			}

			if getOutputFormat() != "table" {
				return printOutput(f)
			}
			printForecast(cmd.OutOrStdout(), f.PredictedUnits, f.PredictedAmount, f.GrowthRatePercent,
				string(f.Trend), string(f.Confidence), f.AnomalyDetected, f.DataPoints)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "series file, a JSON array or {\"data\": [...]} (- for stdin)")

	return cmd
}

func newForecastRemoteCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Forecast a series from a JSON file on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := readSeriesFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			series := make([]client.SeriesPoint, 0, len(points))
			for _, p := range points {
				series = append(series, client.SeriesPoint{Month: string(p.Month), Units: p.Units, Amount: p.Amount})
			}

			f, err := apiClient.Forecasts().Predict(context.Background(), series)
			if err != nil {
				return fmt.Errorf("failed to forecast: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(f)
			}
			printForecast(cmd.OutOrStdout(), f.PredictedUnits, f.PredictedAmount, f.GrowthRatePercent,
				f.Trend, f.Confidence, f.AnomalyDetected, f.DataPoints)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "series file, a JSON array or {\"data\": [...]} (- for stdin)")

	return cmd
}

func newForecastStoredCmd() *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "stored",
		Short: "Forecast from the bills stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Forecasts().Stored(context.Background(), branchOrDefault(branch))
			if err != nil {
				return fmt.Errorf("failed to get forecast: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:      %s\n", formatStatus(result.Status))
			if result.Forecast == nil {
				fmt.Fprintf(out, "Message:     %s\n", result.Message)
				return nil
			}
			f := result.Forecast
			printForecast(out, f.PredictedUnits, f.PredictedAmount, f.GrowthRatePercent,
				f.Trend, f.Confidence, f.AnomalyDetected, f.DataPoints)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch to forecast (default: whole account)")

	return cmd
}

func newForecastBranchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "Forecast every branch from stored bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Forecasts().Branches(context.Background())
			if err != nil {
				return fmt.Errorf("failed to forecast branches: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			names := make([]string, 0, len(result.Predictions))
			for name := range result.Predictions {
				names = append(names, name)
			}
			sort.Strings(names)

			t := NewTable("BRANCH", "UNITS", "AMOUNT", "TREND", "CONFIDENCE")
			t.writer = cmd.OutOrStdout()
			for _, name := range names {
				f := result.Predictions[name]
				t.AddRow(name, formatUnits(f.PredictedUnits), formatAmount(f.PredictedAmount), formatTrend(f.Trend), f.Confidence)
			}
			t.Render()

			for name, msg := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, msg)
			}
			return nil
		},
	}
}

// readSeriesFile loads and validates a series from path, or from stdin when
// path is "-"
func readSeriesFile(stdin io.Reader, path string) ([]dto.SeriesPointDTO, error) {
	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read series: %w", err)
	}

	points, err := parseSeries(raw)
	if err != nil {
		return nil, err
	}

	req := dto.ForecastRequest{Data: points}
	if errs := validator.New().Validate(&req); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("invalid series: %s", strings.Join(msgs, "; "))
	}
	return points, nil
}

func parseSeries(raw []byte) ([]dto.SeriesPointDTO, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("series is empty")
	}

	if raw[0] == '[' {
		var points []dto.SeriesPointDTO
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("failed to parse series: %w", err)
		}
		return points, nil
	}

	var req dto.ForecastRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to parse series: %w", err)
	}
	return req.Data, nil
}

func printForecast(w io.Writer, units, amount, growth float64, trend, confidence string, anomaly bool, points int) {
	fmt.Fprintf(w, "Predicted:   %s units (%s)\n", formatUnits(units), formatAmount(amount))
	fmt.Fprintf(w, "Growth:      %.2f%%\n", growth)
	fmt.Fprintf(w, "Trend:       %s\n", formatTrend(trend))
	fmt.Fprintf(w, "Confidence:  %s (%d months)\n", confidence, points)
	if anomaly {
		fmt.Fprintln(w, "Anomaly:     last month is unusual")
	}
}
