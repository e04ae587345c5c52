package core

const (
	PersonaHighUtilization   PersonaType = "high_utilization"
	PersonaVariableIncome    PersonaType = "variable_income"
	PersonaLifestyleCreep    PersonaType = "lifestyle_creep"
	PersonaSubscriptionHeavy PersonaType = "subscription_heavy"
	PersonaSavingsBuilder    PersonaType = "savings_builder"
)

type (
	PersonaType string

	// PersonaAssignment records one matched persona, the criteria tokens that
	// satisfied it (in evaluation order) and a confidence in [0,1].
	PersonaAssignment struct {
		Persona    PersonaType
		Criteria   []string
		Confidence float64
		Signals    SignalBundle
	}

	// ClassificationResult is the resolved outcome: one primary persona plus
	// every other persona that matched, ordered by priority.
	ClassificationResult struct {
		Primary   PersonaAssignment
		Secondary []PersonaAssignment
	}
)

const (
	RecommendationEducation    RecommendationType = "education"
	RecommendationPartnerOffer RecommendationType = "partner_offer"
)

type (
	RecommendationType string

	Recommendation struct {
		Type        RecommendationType
		Kind        string // stable key for impact scoring, e.g. "balance_transfer_card"
		Title       string
		Description string
		// ImpactEstimate is an optional caller-supplied impact hint in dollars.
		ImpactEstimate float64
	}

	RankedRecommendation struct {
		Recommendation
		ImpactScore   float64
		UrgencyScore  float64
		PriorityScore float64
	}

	// Offer is a partner offer with optional eligibility criteria. Nil
	// pointer fields mean the criterion is absent.
	Offer struct {
		ID                  string
		Type                string
		Title               string
		Persona             PersonaType // empty means any persona
		MinCreditScore      *int
		MaxUtilization      *float64
		MinIncome           *float64
		MinSubscriptions    *int
		ExcludeExisting     []string
		ExcludeAccountTypes []string
	}
)

const (
	StrategyAvalanche PayoffStrategy = "avalanche"
	StrategySnowball  PayoffStrategy = "snowball"
)

type (
	PayoffStrategy string

	// Debt is one liability eligible for payoff simulation.
	Debt struct {
		AccountID      string
		Name           string
		Balance        float64
		APR            float64
		MinimumPayment float64
	}

	DebtSchedule struct {
		AccountID       string
		Name            string
		StartingBalance float64
		APR             float64
		MonthlyPayment  float64
		PayoffMonth     int
		InterestPaid    float64
	}

	// PlanMonth is one step of a debt's amortization timeline.
	PlanMonth struct {
		Month   int
		Payment float64
		Balance float64
	}

	DebtPaymentPlan struct {
		Strategy           PayoffStrategy
		Debts              []DebtSchedule
		TotalDebt          float64
		TotalInterest      float64
		TotalInterestSaved float64
		MonthsToDebtFree   int
		MonthlySurplus     float64
		Timeline           map[string][]PlanMonth
	}
)

func (s PayoffStrategy) Valid() bool {
	return s == StrategyAvalanche || s == StrategySnowball
}
