package signals

import (
	"math"
	"strings"
	"time"

	"finpersona/internal/core"
)

// payrollKeywords mark a merchant as a likely employer deposit.
var payrollKeywords = []string{
	"payroll", "salary", "paycheck", "direct dep", "wages", "employer",
}

// transferKeywords mark transactions excluded from both income and expense
// aggregation: internal movements, not earnings or spending.
var transferKeywords = []string{
	"transfer", "xfer", "zelle", "venmo", "cash app", "atm", "withdrawal",
}

// Pay gap bands in days. A frequency wins when at least 60% of observed gaps
// land in its band; the bare median is only a fallback for sparse histories.
var frequencyBands = []struct {
	freq   core.PayFrequency
	lo, hi float64
}{
	{core.FrequencyWeekly, 6, 8},
	{core.FrequencyBiweekly, 13, 15},
	{core.FrequencyTwiceMonthly, 14, 16},
	{core.FrequencyMonthly, 28, 31},
}

const frequencyBandRatio = 0.60

// DetectIncome derives payroll cadence and cash-flow signals from the user's
// transactions. checkingBalance is the summed current balance of checking
// accounts; txns should cover the trailing window (typically 180 days).
func DetectIncome(txns []core.Transaction, checkingBalance float64, windowDays int) core.IncomeSignals {
	sig := core.IncomeSignals{Frequency: core.FrequencyIrregular}

	payroll := payrollTransactions(txns)
	sig.PayrollCount = len(payroll)

	months := monthsInWindow(windowDays)

	var totalIncome float64
	dates := make([]time.Time, 0, len(payroll))
	for _, t := range payroll {
		totalIncome += t.Amount
		dates = append(dates, t.Date)
	}
	if len(payroll) > 0 {
		sig.AverageMonthlyIncome = totalIncome / months
	}

	gaps := DayGaps(dates)
	if len(gaps) > 0 {
		sig.MedianPayGapDays = Median(gaps)
		sig.GapVariability = StdDevPop(gaps)
		sig.Frequency = classifyFrequency(gaps, sig.MedianPayGapDays)
	}

	sig.MonthlyExpenses = monthlyExpenses(txns, months)
	if sig.MonthlyExpenses > 0 {
		sig.CashFlowBufferMonths = checkingBalance / sig.MonthlyExpenses
	}
	return sig
}

// classifyFrequency prefers the ratio-of-gaps-in-band rule, which holds up
// better than the bare median on noisy deposit histories, and falls back to
// median band matching.
func classifyFrequency(gaps []float64, median float64) core.PayFrequency {
	for _, band := range frequencyBands {
		if ratioInBand(gaps, band.lo, band.hi) >= frequencyBandRatio {
			return band.freq
		}
	}
	for _, band := range frequencyBands {
		if median >= band.lo && median <= band.hi {
			return band.freq
		}
	}
	return core.FrequencyIrregular
}

// payrollTransactions filters inflows that look like employer deposits:
// an ACH/deposit payment channel or a payroll-keyword merchant, never a
// transfer.
func payrollTransactions(txns []core.Transaction) []core.Transaction {
	var payroll []core.Transaction
	for _, t := range sortedByDate(txns) {
		if !t.IsInflow() || isTransferLike(t) {
			continue
		}
		channel := strings.ToLower(t.PaymentChannel)
		byChannel := strings.Contains(channel, "ach") || strings.Contains(channel, "deposit")
		if byChannel || matchesAny(t.Merchant, payrollKeywords) {
			payroll = append(payroll, t)
		}
	}
	return payroll
}

// MonthlyExpenses returns the trailing average monthly outflow, excluding
// transfer-like transactions.
func MonthlyExpenses(txns []core.Transaction, windowDays int) float64 {
	return monthlyExpenses(txns, monthsInWindow(windowDays))
}

func monthlyExpenses(txns []core.Transaction, months float64) float64 {
	var total float64
	for _, t := range txns {
		if t.IsOutflow() && !isTransferLike(t) {
			total += math.Abs(t.Amount)
		}
	}
	if total == 0 {
		return 0
	}
	return total / months
}

func isTransferLike(t core.Transaction) bool {
	return matchesAny(t.Merchant, transferKeywords) ||
		matchesAny(t.Category, transferKeywords) ||
		matchesAny(t.CategoryDetail, transferKeywords)
}

func matchesAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
