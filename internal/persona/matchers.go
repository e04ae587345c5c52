package persona

import (
	"finpersona/internal/core"
)

// Criteria tokens recorded on assignments, in evaluation order per matcher.
const (
	CriterionUtilization50Plus  = "utilization_50_plus"
	CriterionInterestCharges    = "interest_charges"
	CriterionMinimumPaymentOnly = "minimum_payment_only"
	CriterionOverdue            = "overdue"

	CriterionMedianGapOver45   = "median_gap_over_45d"
	CriterionLowCashBuffer     = "cash_buffer_under_1mo"
	CriterionIncomeTopQuartile = "income_top_quartile"
	CriterionLowSavingsRate    = "savings_rate_under_5"
	CriterionHighDiscretionary = "discretionary_over_30"

	CriterionRecurringMerchants = "recurring_merchants_3_plus"
	CriterionRecurringSpend     = "recurring_spend_50_plus"
	CriterionSubscriptionShare  = "subscription_share_10_plus"

	CriterionSavingsGrowth = "savings_growth_2_plus"
	CriterionNetInflow     = "net_inflow_200_plus"
	CriterionUtilLow       = "all_utilizations_low"
)

// matchHighUtilization fires when any credit account shows a distress
// signal. Primary signals come from the account with the highest observed
// utilization; criteria are collected across all accounts.
func matchHighUtilization(bundle core.SignalBundle) (core.PersonaAssignment, bool) {
	seen := make(map[string]bool)
	var criteria []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			criteria = append(criteria, c)
		}
	}

	for _, c := range bundle.CreditAccounts {
		if c.Utilization >= 50 {
			add(CriterionUtilization50Plus)
		}
		if c.InterestCharges > 0 {
			add(CriterionInterestCharges)
		}
		if c.MinimumPaymentOnly {
			add(CriterionMinimumPaymentOnly)
		}
		if c.IsOverdue {
			add(CriterionOverdue)
		}
	}
	if len(criteria) == 0 {
		return core.PersonaAssignment{}, false
	}

	return core.PersonaAssignment{
		Persona:    core.PersonaHighUtilization,
		Criteria:   criteria,
		Confidence: confidence(len(criteria)),
		Signals:    bundle,
	}, true
}

func matchVariableIncome(bundle core.SignalBundle) (core.PersonaAssignment, bool) {
	if bundle.Income.MedianPayGapDays <= 45 || bundle.Income.CashFlowBufferMonths >= 1 {
		return core.PersonaAssignment{}, false
	}
	criteria := []string{CriterionMedianGapOver45, CriterionLowCashBuffer}
	return core.PersonaAssignment{
		Persona:    core.PersonaVariableIncome,
		Criteria:   criteria,
		Confidence: confidence(len(criteria)),
		Signals:    bundle,
	}, true
}

func matchLifestyleCreep(bundle core.SignalBundle) (core.PersonaAssignment, bool) {
	s := bundle.Spending
	if !s.IncomeTopQuartile || bundle.Savings.SavingsRatePct >= 5 || s.DiscretionaryShare <= 0.30 {
		return core.PersonaAssignment{}, false
	}
	criteria := []string{CriterionIncomeTopQuartile, CriterionLowSavingsRate, CriterionHighDiscretionary}
	return core.PersonaAssignment{
		Persona:    core.PersonaLifestyleCreep,
		Criteria:   criteria,
		Confidence: confidence(len(criteria)),
		Signals:    bundle,
	}, true
}

func matchSubscriptionHeavy(bundle core.SignalBundle) (core.PersonaAssignment, bool) {
	subs := bundle.Subscriptions
	if subs.RecurringCount < 3 {
		return core.PersonaAssignment{}, false
	}

	criteria := []string{CriterionRecurringMerchants}
	switch {
	case subs.MonthlyRecurringSpend >= 50:
		criteria = append(criteria, CriterionRecurringSpend)
	case subs.SubscriptionSharePct >= 10:
		criteria = append(criteria, CriterionSubscriptionShare)
	default:
		return core.PersonaAssignment{}, false
	}

	return core.PersonaAssignment{
		Persona:    core.PersonaSubscriptionHeavy,
		Criteria:   criteria,
		Confidence: confidence(len(criteria)),
		Signals:    bundle,
	}, true
}

// matchSavingsBuilder requires active saving and low utilization everywhere.
// With no credit accounts the utilization condition passes vacuously; the
// criterion token is still recorded so downstream consumers see the check
// happened.
func matchSavingsBuilder(bundle core.SignalBundle) (core.PersonaAssignment, bool) {
	var criteria []string
	switch {
	case bundle.Savings.GrowthRatePct >= 2:
		criteria = append(criteria, CriterionSavingsGrowth)
	case bundle.Savings.NetMonthlyInflow >= 200:
		criteria = append(criteria, CriterionNetInflow)
	default:
		return core.PersonaAssignment{}, false
	}

	for _, c := range bundle.CreditAccounts {
		if c.Utilization >= 30 {
			return core.PersonaAssignment{}, false
		}
	}
	criteria = append(criteria, CriterionUtilLow)

	return core.PersonaAssignment{
		Persona:    core.PersonaSavingsBuilder,
		Criteria:   criteria,
		Confidence: confidence(len(criteria)),
		Signals:    bundle,
	}, true
}
