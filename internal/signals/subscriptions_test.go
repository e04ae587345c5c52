package signals

import (
	"fmt"
	"testing"
	"time"

	"finpersona/internal/core"
)

func charge(merchant string, date time.Time, amount float64) core.Transaction {
	return core.Transaction{
		ID:        fmt.Sprintf("%s-%s", merchant, date.Format("20060102")),
		AccountID: "card-1",
		Date:      date,
		Amount:    -amount,
		Merchant:  merchant,
	}
}

func monthlyCharges(merchant string, amounts ...float64) []core.Transaction {
	start := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	txns := make([]core.Transaction, 0, len(amounts))
	for i, a := range amounts {
		txns = append(txns, charge(merchant, start.AddDate(0, 0, i*30), a))
	}
	return txns
}

func TestDetectSubscriptions_RecurringExample(t *testing.T) {
	// Three charges of $14.99, $14.99, $15.01 a month apart qualify as a
	// monthly subscription.
	txns := monthlyCharges("StreamFlix", 14.99, 14.99, 15.01)

	sig := DetectSubscriptions(txns, 2000)
	if sig.RecurringCount != 1 {
		t.Fatalf("RecurringCount = %d, want 1", sig.RecurringCount)
	}
	rm := sig.Recurring[0]
	if rm.Cadence != core.CadenceMonthly {
		t.Errorf("Cadence = %v, want monthly", rm.Cadence)
	}
	if rm.Occurrences != 3 {
		t.Errorf("Occurrences = %d, want 3", rm.Occurrences)
	}
	if rm.AverageAmount < 14.99 || rm.AverageAmount > 15.01 {
		t.Errorf("AverageAmount = %v, want ~15", rm.AverageAmount)
	}
}

func TestDetectSubscriptions_Qualification(t *testing.T) {
	tests := []struct {
		name string
		txns []core.Transaction
		want int
	}{
		{
			name: "two charges are not enough",
			txns: monthlyCharges("TwoTimer", 9.99, 9.99),
			want: 0,
		},
		{
			name: "variable amounts disqualify",
			txns: monthlyCharges("GroceryMart", 80, 130, 55),
			want: 0,
		},
		{
			name: "case-insensitive merchant grouping",
			txns: append(monthlyCharges("Spotify", 10.99, 10.99),
				charge("SPOTIFY", time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), 10.99)),
			want: 1,
		},
		{
			name: "missing merchant is skipped",
			txns: monthlyCharges("", 5, 5, 5),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := DetectSubscriptions(tt.txns, 2000)
			if sig.RecurringCount != tt.want {
				t.Errorf("RecurringCount = %d, want %d", sig.RecurringCount, tt.want)
			}
		})
	}
}

func TestDetectSubscriptions_MonthlySpend(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	var txns []core.Transaction
	// Weekly $12 charge: contributes 12 * 4.33.
	for i := 0; i < 8; i++ {
		txns = append(txns, charge("GymPass", start.AddDate(0, 0, i*7), 12))
	}
	// Monthly $15 charge: contributes 15.
	txns = append(txns, monthlyCharges("StreamFlix", 15, 15, 15)...)
	// Biweekly $20 charge aggregates as monthly: contributes 20.
	for i := 0; i < 5; i++ {
		txns = append(txns, charge("MealBox", start.AddDate(0, 0, i*14), 20))
	}

	sig := DetectSubscriptions(txns, 1000)
	want := 12*4.33 + 15 + 20
	if !floatEquals(sig.MonthlyRecurringSpend, want) {
		t.Errorf("MonthlyRecurringSpend = %v, want %v", sig.MonthlyRecurringSpend, want)
	}
	if !floatEquals(sig.SubscriptionSharePct, want/1000*100) {
		t.Errorf("SubscriptionSharePct = %v, want %v", sig.SubscriptionSharePct, want/1000*100)
	}
}

func TestDetectSubscriptions_IrregularExcludedFromSpend(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		charge("RandomShop", start, 25),
		charge("RandomShop", start.AddDate(0, 0, 3), 25),
		charge("RandomShop", start.AddDate(0, 0, 47), 25),
		charge("RandomShop", start.AddDate(0, 0, 99), 25),
	}

	sig := DetectSubscriptions(txns, 1000)
	if sig.RecurringCount != 1 {
		t.Fatalf("RecurringCount = %d, want 1 (stable amounts, enough charges)", sig.RecurringCount)
	}
	if sig.Recurring[0].Cadence != core.CadenceIrregular {
		t.Errorf("Cadence = %v, want irregular", sig.Recurring[0].Cadence)
	}
	if sig.MonthlyRecurringSpend != 0 {
		t.Errorf("MonthlyRecurringSpend = %v, want 0: irregular cadence is excluded", sig.MonthlyRecurringSpend)
	}
}

func TestDetectSubscriptions_OrderInvariantAndIdempotent(t *testing.T) {
	txns := monthlyCharges("StreamFlix", 14.99, 14.99, 15.01)
	reversed := make([]core.Transaction, len(txns))
	for i, tx := range txns {
		reversed[len(txns)-1-i] = tx
	}

	first := DetectSubscriptions(txns, 2000)
	second := DetectSubscriptions(txns, 2000)
	shuffled := DetectSubscriptions(reversed, 2000)

	for _, sig := range []core.SubscriptionSignals{second, shuffled} {
		if sig.RecurringCount != first.RecurringCount {
			t.Fatalf("RecurringCount differs between runs: %d vs %d", sig.RecurringCount, first.RecurringCount)
		}
		if sig.Recurring[0].Cadence != first.Recurring[0].Cadence {
			t.Errorf("Cadence differs between runs: %v vs %v", sig.Recurring[0].Cadence, first.Recurring[0].Cadence)
		}
		if !floatEquals(sig.MonthlyRecurringSpend, first.MonthlyRecurringSpend) {
			t.Errorf("MonthlyRecurringSpend differs between runs")
		}
	}
}
