package ledger

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	StaleDateErr            = errors.New("update date precedes last recorded date")
	UnsupportedFrequencyErr = errors.New("only daily returns are implemented")
)

// Frequency selects the return period for derived statistics. Only the daily
// path is implemented; the parameter exists so callers don't bake "daily"
// into their signatures.
type Frequency string

const FrequencyDaily Frequency = "D"

const statEpsilon = 1e-9

// ValuePoint is one (date, value) observation of total portfolio value.
type ValuePoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// PortfolioMetrics is an append-only, strictly chronological series of
// portfolio valuations with derived risk and return statistics. It is
// created once per backtest and updated once per simulated day; statistics
// are read after the loop ends.
type PortfolioMetrics struct {
	startDate   time.Time
	initialCash decimal.Decimal
	history     []ValuePoint
}

// NewPortfolioMetrics seeds the value history with the portfolio's starting
// state, so the first entry is always (start date, initial cash).
func NewPortfolioMetrics(p *Portfolio) *PortfolioMetrics {
	return &PortfolioMetrics{
		startDate:   p.StartDate(),
		initialCash: p.Cash(),
		history: []ValuePoint{
			{Date: p.StartDate(), Value: p.Cash()},
		},
	}
}

func (m *PortfolioMetrics) StartDate() time.Time { return m.startDate }

// ValueHistory returns a copy of the recorded (date, value) series.
func (m *PortfolioMetrics) ValueHistory() []ValuePoint {
	out := make([]ValuePoint, len(m.history))
	copy(out, m.history)
	return out
}

// Update records the portfolio value for a date. Dates must arrive in
// chronological order; re-updating the last recorded date overwrites its
// value, which makes a same-day correction idempotent. An earlier date means
// the simulation loop is broken, not that data is sparse, so it is rejected.
func (m *PortfolioMetrics) Update(date time.Time, value decimal.Decimal) error {
	last := m.history[len(m.history)-1]
	switch {
	case date.After(last.Date):
		m.history = append(m.history, ValuePoint{Date: date, Value: value})
	case date.Equal(last.Date):
		m.history[len(m.history)-1] = ValuePoint{Date: date, Value: value}
	default:
		return StaleDateErr
	}
	return nil
}

// Returns computes simple period-over-period percentage changes of the value
// series. Fewer than 2 points yields an empty slice.
func (m *PortfolioMetrics) Returns(freq Frequency) ([]float64, error) {
	if freq != FrequencyDaily {
		return nil, UnsupportedFrequencyErr
	}
	if len(m.history) < 2 {
		return nil, nil
	}
	returns := make([]float64, 0, len(m.history)-1)
	prev := m.history[0].Value.InexactFloat64()
	for _, point := range m.history[1:] {
		cur := point.Value.InexactFloat64()
		returns = append(returns, cur/prev-1.0)
		prev = cur
	}
	return returns, nil
}

// CAGR is the compound annual growth rate over the recorded span, using
// 365.25 days per year. The second return value is false when fewer than 2
// points exist.
func (m *PortfolioMetrics) CAGR() (float64, bool) {
	if len(m.history) < 2 {
		return 0, false
	}
	first := m.history[0]
	last := m.history[len(m.history)-1]

	initial := first.Value.InexactFloat64()
	final := last.Value.InexactFloat64()
	if initial <= 0 {
		return 0, false
	}

	deltaDays := last.Date.Sub(first.Date).Hours() / 24.0
	if deltaDays <= 0 {
		return 0.0, true
	}
	return math.Pow(final/initial, 365.25/deltaDays) - 1.0, true
}

// AnnualizedVolatility is the population standard deviation of the daily
// returns scaled by sqrt(periodsPerYear).
func (m *PortfolioMetrics) AnnualizedVolatility(periodsPerYear int) (float64, bool) {
	returns, _ := m.Returns(FrequencyDaily)
	if len(returns) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var varianceSum float64
	for _, r := range returns {
		diff := r - mean
		varianceSum += diff * diff
	}
	std := math.Sqrt(varianceSum / float64(len(returns)))
	return std * math.Sqrt(float64(periodsPerYear)), true
}

// SharpeRatio is (CAGR - riskFree) / annualized volatility. With zero
// volatility the ratio collapses to 0 when CAGR equals the risk-free rate
// and to +/-Inf otherwise.
func (m *PortfolioMetrics) SharpeRatio(riskFree float64, periodsPerYear int) (float64, bool) {
	cagr, ok := m.CAGR()
	if !ok {
		return 0, false
	}
	vol, ok := m.AnnualizedVolatility(periodsPerYear)
	if !ok {
		return 0, false
	}
	if math.Abs(vol) < statEpsilon {
		return degenerateRatio(cagr, riskFree), true
	}
	return (cagr - riskFree) / vol, true
}

// SortinoRatio is (CAGR - riskFree) / annualized downside deviation. The
// downside deviation divides by the total number of returns, not just the
// downside subset, with the daily target riskFree/periodsPerYear.
func (m *PortfolioMetrics) SortinoRatio(riskFree float64, periodsPerYear int) (float64, bool) {
	cagr, ok := m.CAGR()
	if !ok {
		return 0, false
	}
	returns, _ := m.Returns(FrequencyDaily)
	if len(returns) == 0 {
		return 0, false
	}

	target := riskFree / float64(periodsPerYear)
	var downsideSum float64
	for _, r := range returns {
		if d := r - target; d < 0 {
			downsideSum += d * d
		}
	}
	downsideDev := math.Sqrt(downsideSum/float64(len(returns))) * math.Sqrt(float64(periodsPerYear))

	if math.Abs(downsideDev) < statEpsilon {
		return degenerateRatio(cagr, riskFree), true
	}
	return (cagr - riskFree) / downsideDev, true
}

// MaxDrawdown is the largest peak-to-trough decline as a negative fraction,
// 0.0 when the series never declines.
func (m *PortfolioMetrics) MaxDrawdown() (float64, bool) {
	if len(m.history) < 2 {
		return 0, false
	}
	runningMax := m.history[0].Value.InexactFloat64()
	maxDD := 0.0
	for _, point := range m.history[1:] {
		v := point.Value.InexactFloat64()
		if v > runningMax {
			runningMax = v
			continue
		}
		if runningMax > 0 {
			if dd := (v - runningMax) / runningMax; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD, true
}

// CalmarRatio is CAGR over the absolute max drawdown. With no drawdown it is
// +Inf for a positive CAGR and 0 otherwise.
func (m *PortfolioMetrics) CalmarRatio() (float64, bool) {
	cagr, ok := m.CAGR()
	if !ok {
		return 0, false
	}
	maxDD, ok := m.MaxDrawdown()
	if !ok {
		return 0, false
	}
	if math.Abs(maxDD) < statEpsilon {
		if cagr > 0 {
			return math.Inf(1), true
		}
		return 0.0, true
	}
	return cagr / math.Abs(maxDD), true
}

func degenerateRatio(cagr, riskFree float64) float64 {
	switch {
	case math.Abs(cagr-riskFree) < statEpsilon:
		return 0.0
	case cagr > riskFree:
		return math.Inf(1)
	default:
		return math.Inf(-1)
	}
}

// Summary is the final metrics record handed to the presentation layer.
type Summary struct {
	StartDate               time.Time
	EndDate                 time.Time
	InitialValue            float64
	FinalValue              float64
	TotalReturnPct          float64
	AnnualizedReturnPct     float64
	AnnualizedVolatilityPct float64
	SharpeRatio             float64
	SortinoRatio            float64
	MaxDrawdownPct          float64
	CalmarRatio             float64
	NumDataPoints           int
}

var InsufficientHistoryErr = errors.New("not enough data points to compute metrics")

// Final assembles the summary record from the full value history.
func (m *PortfolioMetrics) Final(riskFree float64, periodsPerYear int) (Summary, error) {
	if len(m.history) < 2 {
		return Summary{}, InsufficientHistoryErr
	}
	last := m.history[len(m.history)-1]
	initial := m.initialCash.InexactFloat64()
	final := last.Value.InexactFloat64()

	cagr, _ := m.CAGR()
	vol, _ := m.AnnualizedVolatility(periodsPerYear)
	sharpe, _ := m.SharpeRatio(riskFree, periodsPerYear)
	sortino, _ := m.SortinoRatio(riskFree, periodsPerYear)
	maxDD, _ := m.MaxDrawdown()
	calmar, _ := m.CalmarRatio()

	return Summary{
		StartDate:               m.startDate,
		EndDate:                 last.Date,
		InitialValue:            initial,
		FinalValue:              final,
		TotalReturnPct:          (final/initial - 1.0) * 100,
		AnnualizedReturnPct:     cagr * 100,
		AnnualizedVolatilityPct: vol * 100,
		SharpeRatio:             sharpe,
		SortinoRatio:            sortino,
		MaxDrawdownPct:          maxDD * 100,
		CalmarRatio:             calmar,
		NumDataPoints:           len(m.history),
	}, nil
}
