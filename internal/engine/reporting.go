package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rohan-0202/QuantForge/internal/ledger"
)

// PrintReport writes the final metrics summary in a human-readable layout.
func PrintReport(w io.Writer, s ledger.Summary) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Start Date:             %s\n", s.StartDate.Format("2006-01-02"))
	fmt.Fprintf(w, "End Date:               %s\n", s.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Data Points:            %d\n", s.NumDataPoints)

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Initial Value:          %.2f\n", s.InitialValue)
	fmt.Fprintf(w, "Final Value:            %.2f\n", s.FinalValue)
	fmt.Fprintf(w, "Total Return:           %.2f%%\n", s.TotalReturnPct)
	fmt.Fprintf(w, "Annualized Return:      %.2f%%\n", s.AnnualizedReturnPct)

	fmt.Fprintln(w, "\n-- Risk --")
	fmt.Fprintf(w, "Annualized Volatility:  %.2f%%\n", s.AnnualizedVolatilityPct)
	fmt.Fprintf(w, "Max Drawdown:           %.2f%%\n", s.MaxDrawdownPct)
	fmt.Fprintf(w, "Sharpe Ratio:           %s\n", formatRatio(s.SharpeRatio))
	fmt.Fprintf(w, "Sortino Ratio:          %s\n", formatRatio(s.SortinoRatio))
	fmt.Fprintf(w, "Calmar Ratio:           %s\n", formatRatio(s.CalmarRatio))

	fmt.Fprintln(w, "===========================")
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "+inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.4f", v)
}

// writeValueHistoryCSVFile writes the (date, value) series to a CSV file.
func writeValueHistoryCSVFile(path string, history []ledger.ValuePoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create value history file: %w", err)
	}
	defer f.Close()

	return writeValueHistoryCSV(f, history)
}

// writeValueHistoryCSV writes the series to any io.Writer as CSV. Pass
// os.Stdout for debugging, or a file.
func writeValueHistoryCSV(w io.Writer, history []ledger.ValuePoint) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"date", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, point := range history {
		record := []string{
			point.Date.Format("2006-01-02"),
			point.Value.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
