package signals

import (
	"math"

	"finpersona/internal/core"
)

// discretionaryKeywords mark spending categories counted toward the
// discretionary share.
var discretionaryKeywords = []string{
	"dining", "restaurant", "entertainment", "travel", "recreation",
}

// DetectSpending derives the income-relative spending signals used by the
// lifestyle classification. The top-quartile flag is filled in by the caller,
// which owns the cross-user view.
func DetectSpending(txns []core.Transaction, monthlyIncome float64, windowDays int) core.SpendingSignals {
	sig := core.SpendingSignals{MonthlyIncome: monthlyIncome}
	if monthlyIncome <= 0 {
		return sig
	}

	var discretionary float64
	for _, t := range txns {
		if t.IsOutflow() && isDiscretionary(t) {
			discretionary += math.Abs(t.Amount)
		}
	}
	monthlyDiscretionary := discretionary / monthsInWindow(windowDays)
	sig.DiscretionaryShare = monthlyDiscretionary / monthlyIncome
	return sig
}

func isDiscretionary(t core.Transaction) bool {
	return matchesAny(t.Category, discretionaryKeywords) ||
		matchesAny(t.CategoryDetail, discretionaryKeywords)
}
