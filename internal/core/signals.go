package core

const (
	BucketNone     UtilizationBucket = "none"
	BucketLow      UtilizationBucket = "low"
	BucketMedium   UtilizationBucket = "medium"
	BucketHigh     UtilizationBucket = "high"
	BucketCritical UtilizationBucket = "critical"
)

const (
	FrequencyWeekly       PayFrequency = "weekly"
	FrequencyBiweekly     PayFrequency = "biweekly"
	FrequencyTwiceMonthly PayFrequency = "twice_monthly"
	FrequencyMonthly      PayFrequency = "monthly"
	FrequencyIrregular    PayFrequency = "irregular"
)

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceIrregular Cadence = "irregular"
)

type (
	UtilizationBucket string
	PayFrequency      string
	Cadence           string

	// CreditSignals holds the derived metrics for one credit account.
	CreditSignals struct {
		AccountID          string
		Balance            float64
		Limit              float64
		APR                float64
		Utilization        float64
		Bucket             UtilizationBucket
		IsHighUtilization  bool
		InterestCharges    float64
		InterestEstimated  bool
		MinimumPaymentOnly bool
		IsOverdue          bool
	}

	IncomeSignals struct {
		Frequency            PayFrequency
		MedianPayGapDays     float64
		GapVariability       float64
		AverageMonthlyIncome float64
		MonthlyExpenses      float64
		CashFlowBufferMonths float64
		PayrollCount         int
	}

	SavingsSignals struct {
		TotalBalance        float64
		GrowthRatePct       float64
		NetMonthlyInflow    float64
		EmergencyFundMonths float64
		SavingsRatePct      float64
	}

	RecurringMerchant struct {
		Merchant      string
		Cadence       Cadence
		AverageAmount float64
		Occurrences   int
	}

	SubscriptionSignals struct {
		Recurring             []RecurringMerchant
		RecurringCount        int
		MonthlyRecurringSpend float64
		SubscriptionSharePct  float64
	}

	SpendingSignals struct {
		MonthlyIncome      float64
		DiscretionaryShare float64 // dining+entertainment+travel+recreation over income, 0..1
		IncomeTopQuartile  bool
	}

	// SignalBundle is the complete, typed detector output for one user.
	// Credit holds the signals of the account with the highest observed
	// utilization; CreditAccounts holds every credit account's signals.
	SignalBundle struct {
		UserID         string
		WindowDays     int
		Credit         CreditSignals
		CreditAccounts []CreditSignals
		Income         IncomeSignals
		Savings        SavingsSignals
		Subscriptions  SubscriptionSignals
		Spending       SpendingSignals
	}
)

// HasCreditAccounts reports whether any credit signals were observed.
func (b SignalBundle) HasCreditAccounts() bool { return len(b.CreditAccounts) > 0 }

// AnyOverdue reports whether any credit account is overdue.
func (b SignalBundle) AnyOverdue() bool {
	for _, c := range b.CreditAccounts {
		if c.IsOverdue {
			return true
		}
	}
	return false
}
