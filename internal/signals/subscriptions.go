package signals

import (
	"math"
	"sort"
	"strings"
	"time"

	"finpersona/internal/core"
)

const (
	// A merchant qualifies as recurring with at least this many charges and
	// an amount coefficient of variation at or under the tolerance.
	recurringMinOccurrences = 3
	recurringMaxCV          = 0.10

	cadenceBandRatio = 0.60

	// weeksPerMonth converts weekly charges into a monthly spend figure.
	weeksPerMonth = 4.33
)

// DetectSubscriptions finds recurring merchants among the user's outflows
// and aggregates their monthly spend. monthlyExpenses scales the
// subscription share; 0 degrades the share to 0.
func DetectSubscriptions(txns []core.Transaction, monthlyExpenses float64) core.SubscriptionSignals {
	var sig core.SubscriptionSignals

	groups := groupByMerchant(txns)
	merchants := make([]string, 0, len(groups))
	for m := range groups {
		merchants = append(merchants, m)
	}
	sort.Strings(merchants)

	for _, merchant := range merchants {
		charges := groups[merchant]
		rm, ok := recurringMerchant(merchant, charges)
		if !ok {
			continue
		}
		sig.Recurring = append(sig.Recurring, rm)

		// Irregular cadence is excluded from spend totals; biweekly charges
		// aggregate as monthly per product policy.
		switch rm.Cadence {
		case core.CadenceWeekly:
			sig.MonthlyRecurringSpend += rm.AverageAmount * weeksPerMonth
		case core.CadenceMonthly, core.CadenceBiweekly:
			sig.MonthlyRecurringSpend += rm.AverageAmount
		}
	}

	sig.RecurringCount = len(sig.Recurring)
	if monthlyExpenses > 0 {
		sig.SubscriptionSharePct = sig.MonthlyRecurringSpend / monthlyExpenses * 100
	}
	return sig
}

func groupByMerchant(txns []core.Transaction) map[string][]core.Transaction {
	groups := make(map[string][]core.Transaction)
	for _, t := range txns {
		if !t.IsOutflow() {
			continue
		}
		merchant := strings.ToLower(strings.TrimSpace(t.Merchant))
		if merchant == "" {
			continue
		}
		groups[merchant] = append(groups[merchant], t)
	}
	return groups
}

// recurringMerchant qualifies one merchant's charges as a subscription and
// infers its cadence. Returns false when the series is too short or the
// amounts vary too much.
func recurringMerchant(merchant string, charges []core.Transaction) (core.RecurringMerchant, bool) {
	if len(charges) < recurringMinOccurrences {
		return core.RecurringMerchant{}, false
	}

	amounts := make([]float64, 0, len(charges))
	dates := make([]time.Time, 0, len(charges))
	for _, c := range charges {
		amounts = append(amounts, math.Abs(c.Amount))
		dates = append(dates, c.Date)
	}

	mean := Mean(amounts)
	if mean <= 0 || StdDevPop(amounts)/mean > recurringMaxCV {
		return core.RecurringMerchant{}, false
	}

	return core.RecurringMerchant{
		Merchant:      merchant,
		Cadence:       inferCadence(dates),
		AverageAmount: mean,
		Occurrences:   len(charges),
	}, true
}

// inferCadence classifies charge intervals by the ratio-in-band rule. The
// interval sequence is derived from dates sorted internally, so the result
// does not depend on input order.
func inferCadence(dates []time.Time) core.Cadence {
	gaps := DayGaps(dates)
	if len(gaps) == 0 {
		return core.CadenceIrregular
	}
	switch {
	case ratioInBand(gaps, 6, 8) >= cadenceBandRatio:
		return core.CadenceWeekly
	case ratioInBand(gaps, 28, 31) >= cadenceBandRatio:
		return core.CadenceMonthly
	case ratioInBand(gaps, 13, 15) >= cadenceBandRatio:
		return core.CadenceBiweekly
	default:
		return core.CadenceIrregular
	}
}
