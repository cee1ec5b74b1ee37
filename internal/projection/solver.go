package projection

import (
	"math"

	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/constants"
	"go.uber.org/zap"
)

// SafeMonthlyWithdrawal finds the largest starting monthly withdrawal,
// growing with inflation, that leaves the balance above a small floor at the
// end of the horizon. It bisects the interval [0, savings/12] against the
// same monthly simulation used by DepletionTime and stops once the interval
// is no wider than a dollar, returning a whole-dollar amount.
func (e *Engine) SafeMonthlyWithdrawal(currentSavings float64) float64 {
	savings := sanitize(currentSavings)
	if savings <= constants.SafeWithdrawalFloor {
		return 0
	}

	low := 0.0
	high := savings / constants.MonthsPerYear
	iterations := 0
	for high-low > constants.SafeWithdrawalPrecision {
		mid := low + (high-low)/2
		if e.endingBalance(savings, mid) >= constants.SafeWithdrawalFloor {
			low = mid
		} else {
			high = mid
		}
		iterations++
	}

	safe := math.Floor(low)
	e.logger.Debug("safe withdrawal solved",
		zap.String("op", "projection.SafeMonthlyWithdrawal"),
		zap.Float64("savings", savings),
		zap.Float64("safeMonthly", safe),
		zap.Int("iterations", iterations),
	)
	return safe
}

// endingBalance simulates the full horizon with an inflation-growing
// withdrawal and returns the final balance, stopping early once exhausted.
func (e *Engine) endingBalance(savings, baseMonthly float64) float64 {
	monthlyRate := e.assumptions.MonthlyReturnRate()
	horizonMonths := e.assumptions.HorizonYears * constants.MonthsPerYear

	balance := savings
	for month := 0; month < horizonMonths; month++ {
		balance = balance*(1+monthlyRate) - e.withdrawalForMonth(baseMonthly, month)
		if balance <= 0 {
			return balance
		}
	}
	return balance
}
