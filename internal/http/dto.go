package http

import (
	"finpersona/internal/core"
)

// Wire types. The core structs stay tag-free; the API owns its field names.

type creditSignalsBody struct {
	AccountID          string  `json:"account_id"`
	Balance            float64 `json:"balance"`
	Limit              float64 `json:"limit"`
	APR                float64 `json:"apr"`
	Utilization        float64 `json:"utilization"`
	Bucket             string  `json:"bucket"`
	IsHighUtilization  bool    `json:"is_high_utilization"`
	InterestCharges    float64 `json:"interest_charges"`
	InterestEstimated  bool    `json:"interest_estimated"`
	MinimumPaymentOnly bool    `json:"minimum_payment_only"`
	IsOverdue          bool    `json:"is_overdue"`
}

type incomeSignalsBody struct {
	Frequency            string  `json:"frequency"`
	MedianPayGapDays     float64 `json:"median_pay_gap_days"`
	GapVariability       float64 `json:"gap_variability"`
	AverageMonthlyIncome float64 `json:"average_monthly_income"`
	MonthlyExpenses      float64 `json:"monthly_expenses"`
	CashFlowBufferMonths float64 `json:"cash_flow_buffer_months"`
	PayrollCount         int     `json:"payroll_count"`
}

type savingsSignalsBody struct {
	TotalBalance        float64 `json:"total_balance"`
	GrowthRatePct       float64 `json:"growth_rate_pct"`
	NetMonthlyInflow    float64 `json:"net_monthly_inflow"`
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
	SavingsRatePct      float64 `json:"savings_rate_pct"`
}

type recurringMerchantBody struct {
	Merchant      string  `json:"merchant"`
	Cadence       string  `json:"cadence"`
	AverageAmount float64 `json:"average_amount"`
	Occurrences   int     `json:"occurrences"`
}

type subscriptionSignalsBody struct {
	Recurring             []recurringMerchantBody `json:"recurring"`
	RecurringCount        int                     `json:"recurring_count"`
	MonthlyRecurringSpend float64                 `json:"monthly_recurring_spend"`
	SubscriptionSharePct  float64                 `json:"subscription_share_pct"`
}

type spendingSignalsBody struct {
	MonthlyIncome      float64 `json:"monthly_income"`
	DiscretionaryShare float64 `json:"discretionary_share"`
	IncomeTopQuartile  bool    `json:"income_top_quartile"`
}

type signalsBody struct {
	UserID         string                  `json:"user_id"`
	WindowDays     int                     `json:"window_days"`
	Credit         creditSignalsBody       `json:"credit"`
	CreditAccounts []creditSignalsBody     `json:"credit_accounts"`
	Income         incomeSignalsBody       `json:"income"`
	Savings        savingsSignalsBody      `json:"savings"`
	Subscriptions  subscriptionSignalsBody `json:"subscriptions"`
	Spending       spendingSignalsBody     `json:"spending"`
}

func signalsResponse(bundle core.SignalBundle) signalsBody {
	body := signalsBody{
		UserID:     bundle.UserID,
		WindowDays: bundle.WindowDays,
		Credit:     creditBody(bundle.Credit),
		Income: incomeSignalsBody{
			Frequency:            string(bundle.Income.Frequency),
			MedianPayGapDays:     bundle.Income.MedianPayGapDays,
			GapVariability:       bundle.Income.GapVariability,
			AverageMonthlyIncome: bundle.Income.AverageMonthlyIncome,
			MonthlyExpenses:      bundle.Income.MonthlyExpenses,
			CashFlowBufferMonths: bundle.Income.CashFlowBufferMonths,
			PayrollCount:         bundle.Income.PayrollCount,
		},
		Savings: savingsSignalsBody{
			TotalBalance:        bundle.Savings.TotalBalance,
			GrowthRatePct:       bundle.Savings.GrowthRatePct,
			NetMonthlyInflow:    bundle.Savings.NetMonthlyInflow,
			EmergencyFundMonths: bundle.Savings.EmergencyFundMonths,
			SavingsRatePct:      bundle.Savings.SavingsRatePct,
		},
		Subscriptions: subscriptionSignalsBody{
			Recurring:             make([]recurringMerchantBody, 0, len(bundle.Subscriptions.Recurring)),
			RecurringCount:        bundle.Subscriptions.RecurringCount,
			MonthlyRecurringSpend: bundle.Subscriptions.MonthlyRecurringSpend,
			SubscriptionSharePct:  bundle.Subscriptions.SubscriptionSharePct,
		},
		Spending: spendingSignalsBody{
			MonthlyIncome:      bundle.Spending.MonthlyIncome,
			DiscretionaryShare: bundle.Spending.DiscretionaryShare,
			IncomeTopQuartile:  bundle.Spending.IncomeTopQuartile,
		},
	}
	for _, c := range bundle.CreditAccounts {
		body.CreditAccounts = append(body.CreditAccounts, creditBody(c))
	}
	for _, m := range bundle.Subscriptions.Recurring {
		body.Subscriptions.Recurring = append(body.Subscriptions.Recurring, recurringMerchantBody{
			Merchant:      m.Merchant,
			Cadence:       string(m.Cadence),
			AverageAmount: m.AverageAmount,
			Occurrences:   m.Occurrences,
		})
	}
	return body
}

func creditBody(c core.CreditSignals) creditSignalsBody {
	return creditSignalsBody{
		AccountID:          c.AccountID,
		Balance:            c.Balance,
		Limit:              c.Limit,
		APR:                c.APR,
		Utilization:        c.Utilization,
		Bucket:             string(c.Bucket),
		IsHighUtilization:  c.IsHighUtilization,
		InterestCharges:    c.InterestCharges,
		InterestEstimated:  c.InterestEstimated,
		MinimumPaymentOnly: c.MinimumPaymentOnly,
		IsOverdue:          c.IsOverdue,
	}
}

type secondaryPersona struct {
	Persona    string   `json:"persona"`
	Criteria   []string `json:"criteria"`
	Confidence float64  `json:"confidence"`
}

type personaBody struct {
	Matched    bool               `json:"matched"`
	Persona    string             `json:"persona,omitempty"`
	Criteria   []string           `json:"criteria,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	Rationale  string             `json:"rationale,omitempty"`
	Secondary  []secondaryPersona `json:"secondary,omitempty"`
}

type candidateItem struct {
	Type           string  `json:"type"`
	Kind           string  `json:"kind"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	ImpactEstimate float64 `json:"impact_estimate,omitempty"`
}

type recommendationsRequest struct {
	Candidates []candidateItem `json:"candidates"`
	Limit      int             `json:"limit"`
}

type rankedItem struct {
	candidateItem
	ImpactScore   float64 `json:"impact_score"`
	UrgencyScore  float64 `json:"urgency_score"`
	PriorityScore float64 `json:"priority_score"`
}

type rankedResponse struct {
	Recommendations []rankedItem `json:"recommendations"`
}

type offerBody struct {
	ID                  string   `json:"id"`
	Type                string   `json:"type"`
	Title               string   `json:"title"`
	Persona             string   `json:"persona,omitempty"`
	MinCreditScore      *int     `json:"min_credit_score,omitempty"`
	MaxUtilization      *float64 `json:"max_utilization,omitempty"`
	MinIncome           *float64 `json:"min_income,omitempty"`
	MinSubscriptions    *int     `json:"min_subscriptions,omitempty"`
	ExcludeExisting     []string `json:"exclude_existing,omitempty"`
	ExcludeAccountTypes []string `json:"exclude_account_types,omitempty"`
}

type offerRequest struct {
	Offer offerBody `json:"offer"`
}

type eligibilityBody struct {
	OfferID  string `json:"offer_id"`
	Eligible bool   `json:"eligible"`
}

type debtScheduleBody struct {
	AccountID       string  `json:"account_id"`
	Name            string  `json:"name,omitempty"`
	StartingBalance float64 `json:"starting_balance"`
	APR             float64 `json:"apr"`
	MonthlyPayment  float64 `json:"monthly_payment"`
	PayoffMonth     int     `json:"payoff_month"`
	InterestPaid    float64 `json:"interest_paid"`
}

type planMonthBody struct {
	Month   int     `json:"month"`
	Payment float64 `json:"payment"`
	Balance float64 `json:"balance"`
}

type planBody struct {
	Applicable         bool                       `json:"applicable"`
	Reason             string                     `json:"reason,omitempty"`
	Strategy           string                     `json:"strategy,omitempty"`
	Debts              []debtScheduleBody         `json:"debts,omitempty"`
	TotalDebt          float64                    `json:"total_debt,omitempty"`
	TotalInterest      float64                    `json:"total_interest,omitempty"`
	TotalInterestSaved float64                    `json:"total_interest_saved,omitempty"`
	MonthsToDebtFree   int                        `json:"months_to_debt_free,omitempty"`
	MonthlySurplus     float64                    `json:"monthly_surplus,omitempty"`
	Timeline           map[string][]planMonthBody `json:"timeline,omitempty"`
}

func planResponse(plan *core.DebtPaymentPlan) planBody {
	body := planBody{
		Applicable:         true,
		Strategy:           string(plan.Strategy),
		TotalDebt:          plan.TotalDebt,
		TotalInterest:      plan.TotalInterest,
		TotalInterestSaved: plan.TotalInterestSaved,
		MonthsToDebtFree:   plan.MonthsToDebtFree,
		MonthlySurplus:     plan.MonthlySurplus,
	}
	for _, d := range plan.Debts {
		body.Debts = append(body.Debts, debtScheduleBody{
			AccountID:       d.AccountID,
			Name:            d.Name,
			StartingBalance: d.StartingBalance,
			APR:             d.APR,
			MonthlyPayment:  d.MonthlyPayment,
			PayoffMonth:     d.PayoffMonth,
			InterestPaid:    d.InterestPaid,
		})
	}
	if len(plan.Timeline) > 0 {
		body.Timeline = make(map[string][]planMonthBody, len(plan.Timeline))
		for accountID, months := range plan.Timeline {
			tl := make([]planMonthBody, 0, len(months))
			for _, m := range months {
				tl = append(tl, planMonthBody{Month: m.Month, Payment: m.Payment, Balance: m.Balance})
			}
			body.Timeline[accountID] = tl
		}
	}
	return body
}
