package signals

import (
	"testing"
	"time"

	"finpersona/internal/core"
)

func payrollTxn(id string, date time.Time, amount float64) core.Transaction {
	return core.Transaction{
		ID:             id,
		AccountID:      "chk-1",
		Date:           date,
		Amount:         amount,
		Merchant:       "ACME Payroll",
		PaymentChannel: "ach",
	}
}

func payrollSeries(start time.Time, gapDays, count int, amount float64) []core.Transaction {
	txns := make([]core.Transaction, 0, count)
	for i := 0; i < count; i++ {
		txns = append(txns, payrollTxn(
			time.Duration(i).String(),
			start.AddDate(0, 0, i*gapDays),
			amount,
		))
	}
	return txns
}

func TestDetectIncome_Frequency(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		txns []core.Transaction
		want core.PayFrequency
	}{
		{"weekly deposits", payrollSeries(start, 7, 12, 900), core.FrequencyWeekly},
		{"biweekly deposits", payrollSeries(start, 14, 8, 1800), core.FrequencyBiweekly},
		{"monthly deposits", payrollSeries(start, 30, 6, 4000), core.FrequencyMonthly},
		{"no payroll at all", nil, core.FrequencyIrregular},
		{
			name: "scattered deposits",
			txns: []core.Transaction{
				payrollTxn("a", start, 500),
				payrollTxn("b", start.AddDate(0, 0, 4), 500),
				payrollTxn("c", start.AddDate(0, 0, 50), 500),
				payrollTxn("d", start.AddDate(0, 0, 71), 500),
			},
			want: core.FrequencyIrregular,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := DetectIncome(tt.txns, 1000, 180)
			if sig.Frequency != tt.want {
				t.Errorf("Frequency = %v, want %v", sig.Frequency, tt.want)
			}
		})
	}
}

func TestDetectIncome_BandRuleBeatsMedian(t *testing.T) {
	// Ten weekly gaps plus one outlier: the median would still land in the
	// weekly band, but the band-ratio rule should classify it regardless of
	// where the single outlier drags any one statistic.
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	txns := payrollSeries(start, 7, 10, 900)
	txns = append(txns, payrollTxn("late", start.AddDate(0, 0, 9*7+40), 900))

	sig := DetectIncome(txns, 1000, 180)
	if sig.Frequency != core.FrequencyWeekly {
		t.Errorf("Frequency = %v, want weekly despite outlier gap", sig.Frequency)
	}
}

func TestDetectIncome_Defaults(t *testing.T) {
	sig := DetectIncome(nil, 2500, 180)
	if sig.Frequency != core.FrequencyIrregular {
		t.Errorf("Frequency = %v, want irregular", sig.Frequency)
	}
	if sig.AverageMonthlyIncome != 0 {
		t.Errorf("AverageMonthlyIncome = %v, want 0", sig.AverageMonthlyIncome)
	}
	if sig.CashFlowBufferMonths != 0 {
		t.Errorf("CashFlowBufferMonths = %v, want 0 with no expenses", sig.CashFlowBufferMonths)
	}
}

func TestDetectIncome_ExcludesTransfers(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{ID: "t1", AccountID: "chk-1", Date: start, Amount: 2000, Merchant: "Transfer from savings", PaymentChannel: "ach"},
		{ID: "t2", AccountID: "chk-1", Date: start.AddDate(0, 0, 1), Amount: 500, Merchant: "Zelle from friend", PaymentChannel: "ach"},
	}

	sig := DetectIncome(txns, 1000, 180)
	if sig.PayrollCount != 0 {
		t.Errorf("PayrollCount = %d, want 0: transfers are not income", sig.PayrollCount)
	}
}

func TestDetectIncome_CashFlowBuffer(t *testing.T) {
	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	var txns []core.Transaction
	// $1000 of non-transfer spending per month over six months.
	for month := 0; month < 6; month++ {
		txns = append(txns, core.Transaction{
			ID:        time.Duration(month).String(),
			AccountID: "chk-1",
			Date:      start.AddDate(0, month, 0),
			Amount:    -1000,
			Merchant:  "Groceries R Us",
		})
	}
	// A transfer that must not count as an expense.
	txns = append(txns, core.Transaction{
		ID: "tr", AccountID: "chk-1", Date: start, Amount: -5000, Merchant: "Transfer to brokerage",
	})

	sig := DetectIncome(txns, 2000, 180)
	if !floatEquals(sig.MonthlyExpenses, 1000) {
		t.Errorf("MonthlyExpenses = %v, want 1000", sig.MonthlyExpenses)
	}
	if !floatEquals(sig.CashFlowBufferMonths, 2) {
		t.Errorf("CashFlowBufferMonths = %v, want 2", sig.CashFlowBufferMonths)
	}
}

func TestDetectIncome_MedianAndVariability(t *testing.T) {
	start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	sig := DetectIncome(payrollSeries(start, 14, 6, 1500), 0, 180)

	if !floatEquals(sig.MedianPayGapDays, 14) {
		t.Errorf("MedianPayGapDays = %v, want 14", sig.MedianPayGapDays)
	}
	if !floatEquals(sig.GapVariability, 0) {
		t.Errorf("GapVariability = %v, want 0 for perfectly regular gaps", sig.GapVariability)
	}
	if sig.PayrollCount != 6 {
		t.Errorf("PayrollCount = %d, want 6", sig.PayrollCount)
	}
}
