package persona

import (
	"reflect"
	"testing"

	"finpersona/internal/core"
)

func bundleWithCredit(credit ...core.CreditSignals) core.SignalBundle {
	b := core.SignalBundle{UserID: "user-1", WindowDays: 180, CreditAccounts: credit}
	if len(credit) > 0 {
		b.Credit = credit[0]
	}
	return b
}

func TestClassify_NoMatch(t *testing.T) {
	if got := Classify(core.SignalBundle{UserID: "user-1"}); got != nil {
		t.Errorf("Classify() = %+v, want nil for an all-quiet bundle", got)
	}
}

func TestClassify_HighUtilizationWinsPriority(t *testing.T) {
	bundle := bundleWithCredit(core.CreditSignals{
		AccountID:         "card-1",
		Utilization:       72,
		IsHighUtilization: true,
	})
	// Savings Builder would match too, but High Utilization outranks it.
	bundle.Savings = core.SavingsSignals{GrowthRatePct: 5, NetMonthlyInflow: 300}

	got := Classify(bundle)
	if got == nil {
		t.Fatal("Classify() = nil, want a result")
	}
	if got.Primary.Persona != core.PersonaHighUtilization {
		t.Errorf("Primary = %v, want high_utilization", got.Primary.Persona)
	}
	if len(got.Secondary) != 0 {
		// utilization >= 30 blocks Savings Builder entirely
		t.Errorf("Secondary = %v, want none", got.Secondary)
	}
	if !reflect.DeepEqual(got.Primary.Criteria, []string{CriterionUtilization50Plus}) {
		t.Errorf("Criteria = %v, want [utilization_50_plus]", got.Primary.Criteria)
	}
	if !floatNear(got.Primary.Confidence, 0.65) {
		t.Errorf("Confidence = %v, want 0.65", got.Primary.Confidence)
	}
}

func TestClassify_ConfidenceScalesWithCriteria(t *testing.T) {
	bundle := bundleWithCredit(core.CreditSignals{
		AccountID:          "card-1",
		Utilization:        95,
		IsHighUtilization:  true,
		InterestCharges:    40,
		MinimumPaymentOnly: true,
		IsOverdue:          true,
	})

	got := Classify(bundle)
	if got == nil {
		t.Fatal("Classify() = nil, want a result")
	}
	if len(got.Primary.Criteria) != 4 {
		t.Fatalf("Criteria = %v, want all four", got.Primary.Criteria)
	}
	// 0.5 + 0.15*4 caps at 1.
	if !floatNear(got.Primary.Confidence, 1.0) {
		t.Errorf("Confidence = %v, want 1.0", got.Primary.Confidence)
	}
}

func TestClassify_VariableIncome(t *testing.T) {
	tests := []struct {
		name      string
		medianGap float64
		buffer    float64
		want      bool
	}{
		{"long gaps and thin buffer", 60, 0.4, true},
		{"long gaps but healthy buffer", 60, 2.0, false},
		{"regular gaps", 14, 0.4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := core.SignalBundle{
				UserID: "user-1",
				Income: core.IncomeSignals{
					MedianPayGapDays:     tt.medianGap,
					CashFlowBufferMonths: tt.buffer,
				},
			}
			got := Classify(bundle)
			matched := got != nil && got.Primary.Persona == core.PersonaVariableIncome
			if matched != tt.want {
				t.Errorf("variable income matched = %v, want %v", matched, tt.want)
			}
		})
	}
}

func TestClassify_SubscriptionHeavy(t *testing.T) {
	tests := []struct {
		name  string
		count int
		spend float64
		share float64
		want  bool
	}{
		{"count and spend", 3, 65, 0, true},
		{"count and share", 4, 20, 12, true},
		{"count alone is not enough", 5, 20, 4, false},
		{"too few merchants", 2, 200, 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := core.SignalBundle{
				UserID: "user-1",
				Subscriptions: core.SubscriptionSignals{
					RecurringCount:        tt.count,
					MonthlyRecurringSpend: tt.spend,
					SubscriptionSharePct:  tt.share,
				},
			}
			got := Classify(bundle)
			matched := got != nil && got.Primary.Persona == core.PersonaSubscriptionHeavy
			if matched != tt.want {
				t.Errorf("subscription heavy matched = %v, want %v", matched, tt.want)
			}
		})
	}
}

func TestClassify_SavingsBuilderVacuousUtilization(t *testing.T) {
	// Zero credit accounts: the all-utilizations-low condition passes
	// vacuously and its criterion is still recorded.
	bundle := core.SignalBundle{
		UserID:  "user-1",
		Savings: core.SavingsSignals{GrowthRatePct: 3, NetMonthlyInflow: 250},
	}

	got := Classify(bundle)
	if got == nil {
		t.Fatal("Classify() = nil, want savings builder")
	}
	if got.Primary.Persona != core.PersonaSavingsBuilder {
		t.Fatalf("Primary = %v, want savings_builder", got.Primary.Persona)
	}
	if !containsCriterion(got.Primary.Criteria, CriterionUtilLow) {
		t.Errorf("Criteria = %v, want all_utilizations_low present", got.Primary.Criteria)
	}
}

func TestClassify_SavingsBuilderBlockedByUtilization(t *testing.T) {
	bundle := bundleWithCredit(core.CreditSignals{AccountID: "card-1", Utilization: 35})
	bundle.Savings = core.SavingsSignals{GrowthRatePct: 3}

	got := Classify(bundle)
	if got != nil {
		for _, a := range append(got.Secondary, got.Primary) {
			if a.Persona == core.PersonaSavingsBuilder {
				t.Errorf("savings builder matched with a 35%% utilization account")
			}
		}
	}
}

func TestClassify_LifestyleCreep(t *testing.T) {
	bundle := core.SignalBundle{
		UserID:   "user-1",
		Savings:  core.SavingsSignals{SavingsRatePct: 2},
		Spending: core.SpendingSignals{IncomeTopQuartile: true, DiscretionaryShare: 0.42},
	}

	got := Classify(bundle)
	if got == nil || got.Primary.Persona != core.PersonaLifestyleCreep {
		t.Fatalf("Classify() = %+v, want lifestyle creep primary", got)
	}
}

func TestClassify_WeakSignalOverride(t *testing.T) {
	// High Utilization matches only through interest charges (confidence
	// 0.65); Lifestyle Creep matches all three criteria (0.95). The 0.3 lead
	// exceeds the margin, so Lifestyle Creep is promoted.
	bundle := bundleWithCredit(core.CreditSignals{AccountID: "card-1", Utilization: 20, InterestCharges: 12})
	bundle.Savings = core.SavingsSignals{SavingsRatePct: 1}
	bundle.Spending = core.SpendingSignals{IncomeTopQuartile: true, DiscretionaryShare: 0.5}

	got := Classify(bundle)
	if got == nil {
		t.Fatal("Classify() = nil, want a result")
	}
	if got.Primary.Persona != core.PersonaLifestyleCreep {
		t.Fatalf("Primary = %v, want lifestyle_creep promoted over weak high_utilization", got.Primary.Persona)
	}
	if len(got.Secondary) != 1 || got.Secondary[0].Persona != core.PersonaHighUtilization {
		t.Errorf("Secondary = %+v, want demoted high_utilization", got.Secondary)
	}
}

func TestClassify_NoOverrideWithStrongCriteria(t *testing.T) {
	// Utilization at 50 is a strong criterion: no override even if another
	// persona is more confident.
	bundle := bundleWithCredit(core.CreditSignals{AccountID: "card-1", Utilization: 55, IsHighUtilization: true})
	bundle.Savings = core.SavingsSignals{SavingsRatePct: 1}
	bundle.Spending = core.SpendingSignals{IncomeTopQuartile: true, DiscretionaryShare: 0.5}

	got := Classify(bundle)
	if got == nil {
		t.Fatal("Classify() = nil, want a result")
	}
	if got.Primary.Persona != core.PersonaHighUtilization {
		t.Errorf("Primary = %v, want high_utilization kept", got.Primary.Persona)
	}
}

func TestClassify_NoOverrideWithoutConfidenceLead(t *testing.T) {
	// Variable Income at 0.8 leads weak High Utilization at 0.65 by only
	// 0.15: under the margin, High Utilization stays primary.
	bundle := bundleWithCredit(core.CreditSignals{AccountID: "card-1", Utilization: 20, InterestCharges: 12})
	bundle.Income = core.IncomeSignals{MedianPayGapDays: 50, CashFlowBufferMonths: 0.5}

	got := Classify(bundle)
	if got == nil {
		t.Fatal("Classify() = nil, want a result")
	}
	if got.Primary.Persona != core.PersonaHighUtilization {
		t.Errorf("Primary = %v, want high_utilization kept", got.Primary.Persona)
	}
	if len(got.Secondary) != 1 || got.Secondary[0].Persona != core.PersonaVariableIncome {
		t.Errorf("Secondary = %+v, want variable_income", got.Secondary)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	bundle := bundleWithCredit(core.CreditSignals{AccountID: "card-1", Utilization: 62, IsHighUtilization: true, InterestCharges: 30})
	bundle.Subscriptions = core.SubscriptionSignals{RecurringCount: 4, MonthlyRecurringSpend: 80}

	first := Classify(bundle)
	second := Classify(bundle)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Classify() is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func floatNear(a, b float64) bool {
	diff := a - b
	return diff < 1e-9 && diff > -1e-9
}

func containsCriterion(criteria []string, want string) bool {
	for _, c := range criteria {
		if c == want {
			return true
		}
	}
	return false
}
