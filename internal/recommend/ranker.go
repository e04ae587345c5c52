package recommend

import (
	"math"
	"sort"

	"finpersona/internal/core"
)

// Priority weights: impact matters more than urgency, but urgency is shared
// across all of a user's candidates so it still reorders between users.
const (
	impactWeight  = 0.6
	urgencyWeight = 0.4

	urgencyFloor = 30
)

// Rank scores the candidates for the user's current persona and returns them
// ordered by priority, truncated to limit. The sort is stable: candidates
// with equal priority keep their input order.
func Rank(candidates []core.Recommendation, bundle core.SignalBundle, personaType core.PersonaType, limit int) []core.RankedRecommendation {
	urgency := UrgencyScore(bundle)

	ranked := make([]core.RankedRecommendation, 0, len(candidates))
	for _, c := range candidates {
		impact := impactScore(c, bundle, personaType)
		ranked = append(ranked, core.RankedRecommendation{
			Recommendation: c,
			ImpactScore:    impact,
			UrgencyScore:   urgency,
			PriorityScore:  impactWeight*impact + urgencyWeight*urgency,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// UrgencyScore computes the single urgency shared by all of a user's
// candidates. Overdue accounts short-circuit to 100; otherwise the worst of
// the individual pressures wins, with a floor of 30.
func UrgencyScore(bundle core.SignalBundle) float64 {
	if bundle.AnyOverdue() {
		return 100
	}

	urgency := math.Max(
		math.Max(utilizationUrgency(bundle.Credit.Bucket), emergencyFundUrgency(bundle)),
		math.Max(cashBufferUrgency(bundle), subscriptionUrgency(bundle)),
	)
	if urgency < urgencyFloor {
		return urgencyFloor
	}
	return urgency
}

func utilizationUrgency(bucket core.UtilizationBucket) float64 {
	switch bucket {
	case core.BucketCritical:
		return 90
	case core.BucketHigh:
		return 75
	case core.BucketMedium:
		return 50
	default:
		return 0
	}
}

func emergencyFundUrgency(bundle core.SignalBundle) float64 {
	if bundle.Savings.TotalBalance <= 0 && bundle.Savings.EmergencyFundMonths <= 0 {
		return 0
	}
	switch coverage := bundle.Savings.EmergencyFundMonths; {
	case coverage < 1:
		return 80
	case coverage < 3:
		return 60
	case coverage < 6:
		return 40
	default:
		return 0
	}
}

func cashBufferUrgency(bundle core.SignalBundle) float64 {
	if bundle.Income.MonthlyExpenses <= 0 {
		return 0
	}
	switch buffer := bundle.Income.CashFlowBufferMonths; {
	case buffer < 1:
		return 70
	case buffer < 2:
		return 45
	default:
		return 0
	}
}

func subscriptionUrgency(bundle core.SignalBundle) float64 {
	switch share := bundle.Subscriptions.SubscriptionSharePct; {
	case share >= 20:
		return 55
	case share >= 10:
		return 35
	default:
		return 0
	}
}

// impactScore estimates the dollar-shaped impact of one recommendation for
// the given persona and clamps it to [0,100]. Unknown kinds fall back to the
// caller-supplied estimate, then to a modest default.
func impactScore(rec core.Recommendation, bundle core.SignalBundle, personaType core.PersonaType) float64 {
	var impact float64
	switch personaType {
	case core.PersonaHighUtilization:
		impact = highUtilizationImpact(rec, bundle)
	case core.PersonaSavingsBuilder:
		impact = savingsBuilderImpact(rec, bundle)
	case core.PersonaSubscriptionHeavy:
		impact = subscriptionHeavyImpact(rec, bundle)
	case core.PersonaVariableIncome:
		impact = variableIncomeImpact(rec, bundle)
	case core.PersonaLifestyleCreep:
		impact = lifestyleCreepImpact(rec, bundle)
	}
	if impact == 0 {
		impact = defaultImpact(rec)
	}
	return clamp(impact, 0, 100)
}

func highUtilizationImpact(rec core.Recommendation, bundle core.SignalBundle) float64 {
	credit := bundle.Credit
	monthlyInterest := credit.Balance * credit.APR / 100 / 12

	switch rec.Kind {
	case "balance_transfer_card":
		// Savings over the promo horizon: monthly interest avoided for the
		// estimated payoff period, capped at 18 months.
		return monthlyInterest * math.Min(estimatePayoffMonths(credit), 18)
	case "debt_consolidation_loan":
		return monthlyInterest * math.Min(estimatePayoffMonths(credit), 18) * 0.8
	case "utilization_education":
		return 20 + credit.Utilization/2
	default:
		return 0
	}
}

func savingsBuilderImpact(rec core.Recommendation, bundle core.SignalBundle) float64 {
	switch rec.Kind {
	case "hysa":
		// Annual interest gained at a 3.4-point APY delta, scaled down to
		// score range.
		return bundle.Savings.TotalBalance * 0.034 / 10
	case "automatic_savings":
		return 15 + bundle.Savings.NetMonthlyInflow/20
	default:
		return 0
	}
}

func subscriptionHeavyImpact(rec core.Recommendation, bundle core.SignalBundle) float64 {
	switch rec.Kind {
	case "subscription_audit":
		// Assume roughly a quarter of recurring spend is cancelable.
		return bundle.Subscriptions.MonthlyRecurringSpend * 0.25
	case "budgeting_tool":
		return 10 + float64(bundle.Subscriptions.RecurringCount)*3
	default:
		return 0
	}
}

func variableIncomeImpact(rec core.Recommendation, bundle core.SignalBundle) float64 {
	switch rec.Kind {
	case "income_smoothing":
		return 25 + bundle.Income.GapVariability
	case "emergency_fund":
		return 30 + math.Max(0, 3-bundle.Savings.EmergencyFundMonths)*10
	default:
		return 0
	}
}

func lifestyleCreepImpact(rec core.Recommendation, bundle core.SignalBundle) float64 {
	switch rec.Kind {
	case "spending_review":
		return 20 + bundle.Spending.DiscretionaryShare*100
	case "automatic_savings":
		return 25
	default:
		return 0
	}
}

// estimatePayoffMonths guesses payoff duration at a conventional 3% monthly
// payment, bounded below so tiny balances do not explode the estimate.
func estimatePayoffMonths(credit core.CreditSignals) float64 {
	if credit.Balance <= 0 {
		return 0
	}
	payment := math.Max(credit.Balance*0.03, 25)
	return credit.Balance / payment
}

func defaultImpact(rec core.Recommendation) float64 {
	if rec.ImpactEstimate > 0 {
		return rec.ImpactEstimate
	}
	return 20
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
