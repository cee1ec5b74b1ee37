// Package projection computes retirement spend-down projections: the
// year-by-year balance series, the month-accurate depletion time, and the
// maximum sustainable monthly withdrawal.
package projection

import (
	"math"

	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/constants"
	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/mathutil"
	"go.uber.org/zap"
)

// Assumptions holds the market assumptions shared by every computation in
// this package. The same monthly compounding convention is used by the
// balance series, the depletion simulation, and the withdrawal solver so
// that their answers agree with each other.
type Assumptions struct {
	AnnualReturnRate    float64
	AnnualInflationRate float64
	HorizonYears        int
}

// DefaultAssumptions returns the published calculator assumptions
// (6% return, 3% inflation, 30-year horizon).
func DefaultAssumptions() Assumptions {
	return Assumptions{
		AnnualReturnRate:    constants.DefaultAnnualReturnRate,
		AnnualInflationRate: constants.DefaultAnnualInflationRate,
		HorizonYears:        constants.DefaultHorizonYears,
	}
}

// MonthlyReturnRate converts the annual return to its compounding monthly
// equivalent, the 12th root of (1 + annual) minus 1.
func (a Assumptions) MonthlyReturnRate() float64 {
	return math.Pow(1+a.AnnualReturnRate, 1.0/constants.MonthsPerYear) - 1
}

// Point is one year of the projected spend-down series.
type Point struct {
	Year           int
	Balance        float64
	AnnualSpending float64
}

// DepletionResult reports when the simulated balance first reaches zero.
// TotalMonths is capped at the horizon; MoneyLasts indicates the balance
// survived the full horizon.
type DepletionResult struct {
	Years       int
	Months      int
	TotalMonths int
	MoneyLasts  bool
}

// Engine evaluates projections under a fixed set of assumptions.
type Engine struct {
	assumptions Assumptions
	logger      *zap.Logger
}

// NewEngine constructs an Engine. If logger is nil a no-op logger is used.
func NewEngine(logger *zap.Logger, assumptions Assumptions) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if assumptions.HorizonYears <= 0 {
		assumptions.HorizonYears = constants.DefaultHorizonYears
	}
	return &Engine{assumptions: assumptions, logger: logger}
}

// Assumptions returns the engine's assumptions.
func (e *Engine) Assumptions() Assumptions {
	return e.assumptions
}

// Project simulates the spend-down series. The first point is always year 0
// with the starting balance; each later year applies growth then the year's
// inflation-adjusted withdrawal month by month. The series truncates the
// first year the balance reaches zero and never exceeds HorizonYears+1
// points. Balances are clamped to zero.
func (e *Engine) Project(currentSavings, monthlySpending float64) []Point {
	savings := sanitize(currentSavings)
	spending := sanitize(monthlySpending)

	monthlyRate := e.assumptions.MonthlyReturnRate()
	points := make([]Point, 0, e.assumptions.HorizonYears+1)
	balance := savings

	for year := 0; year <= e.assumptions.HorizonYears; year++ {
		annualSpending := spending * constants.MonthsPerYear *
			math.Pow(1+e.assumptions.AnnualInflationRate, float64(year))

		if year > 0 {
			monthlyWithdrawal := annualSpending / constants.MonthsPerYear
			for month := 0; month < constants.MonthsPerYear; month++ {
				balance = balance*(1+monthlyRate) - monthlyWithdrawal
				if balance <= 0 {
					balance = 0
					break
				}
			}
		}

		points = append(points, Point{
			Year:           year,
			Balance:        mathutil.Round(mathutil.Max(0, balance)),
			AnnualSpending: mathutil.Round(annualSpending),
		})

		if balance <= 0 {
			break
		}
	}

	return points
}

// DepletionTime runs the same simulation at month granularity to report the
// exact month the balance is exhausted. Surviving the full horizon reports
// the horizon itself with MoneyLasts set.
func (e *Engine) DepletionTime(currentSavings, monthlySpending float64) DepletionResult {
	savings := sanitize(currentSavings)
	spending := sanitize(monthlySpending)
	horizonMonths := e.assumptions.HorizonYears * constants.MonthsPerYear

	if spending == 0 {
		return DepletionResult{
			Years:       e.assumptions.HorizonYears,
			TotalMonths: horizonMonths,
			MoneyLasts:  true,
		}
	}
	if savings <= 0 {
		return DepletionResult{}
	}

	monthlyRate := e.assumptions.MonthlyReturnRate()
	balance := savings
	for month := 0; month < horizonMonths; month++ {
		balance = balance*(1+monthlyRate) - e.withdrawalForMonth(spending, month)
		if balance <= 0 {
			total := month + 1
			return DepletionResult{
				Years:       total / constants.MonthsPerYear,
				Months:      total % constants.MonthsPerYear,
				TotalMonths: total,
			}
		}
	}

	return DepletionResult{
		Years:       e.assumptions.HorizonYears,
		TotalMonths: horizonMonths,
		MoneyLasts:  true,
	}
}

// withdrawalForMonth returns the inflation-adjusted withdrawal for the
// zero-based global month index. Month 0 falls in projection year 1, so the
// first simulated year already carries one year of inflation, matching the
// yearly series.
func (e *Engine) withdrawalForMonth(baseMonthly float64, month int) float64 {
	year := month/constants.MonthsPerYear + 1
	return baseMonthly * math.Pow(1+e.assumptions.AnnualInflationRate, float64(year))
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
