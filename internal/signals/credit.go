package signals

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"finpersona/internal/core"
)

// Utilization thresholds. 50-90 collapses into a single "high" bucket per
// product policy; the ladder is otherwise monotonic. Ties resolve toward the
// higher bucket.
const (
	utilizationMedium   = 30
	utilizationHigh     = 50
	utilizationCritical = 90
)

// minimumPaymentBand is the relative tolerance for treating a payment as
// minimum-only.
const minimumPaymentBand = 0.05

// Utilization returns balance/limit as a percentage for a revolving account.
// Non-revolving accounts are a caller error, not a zero default.
func Utilization(account core.Account) (float64, error) {
	if !account.IsRevolving() {
		return 0, fmt.Errorf("account %s (%s): %w", account.ID, account.Type, core.ErrWrongAccountType)
	}
	if account.Balances.Limit <= 0 {
		return 0, nil
	}
	return account.Balances.Current / account.Balances.Limit * 100, nil
}

// UtilizationBucket maps a utilization percentage to its severity bucket.
func UtilizationBucket(utilization float64, hasLimit bool) core.UtilizationBucket {
	if !hasLimit {
		return core.BucketNone
	}
	switch {
	case utilization >= utilizationCritical:
		return core.BucketCritical
	case utilization >= utilizationHigh:
		return core.BucketHigh
	case utilization >= utilizationMedium:
		return core.BucketMedium
	default:
		return core.BucketLow
	}
}

// DetectCredit derives the credit signals for one revolving account.
// liability may be nil; missing inputs degrade to defaults rather than
// erroring. now anchors the overdue check and the interest estimate window.
func DetectCredit(account core.Account, liability *core.Liability, txns []core.Transaction, windowDays int, now time.Time) (core.CreditSignals, error) {
	utilization, err := Utilization(account)
	if err != nil {
		return core.CreditSignals{}, err
	}

	sig := core.CreditSignals{
		AccountID:         account.ID,
		Balance:           account.Balances.Current,
		Limit:             account.Balances.Limit,
		Utilization:       utilization,
		Bucket:            UtilizationBucket(utilization, account.Balances.Limit > 0),
		IsHighUtilization: utilization >= utilizationHigh,
	}

	if liability != nil {
		sig.APR = liability.APR
		sig.MinimumPaymentOnly = minimumPaymentOnly(*liability, txns)
		sig.IsOverdue = liability.IsOverdue ||
			(!liability.NextDueDate.IsZero() && liability.NextDueDate.Before(now))
	}

	sig.InterestCharges, sig.InterestEstimated = interestCharges(account, liability, txns, windowDays)
	return sig, nil
}

// minimumPaymentOnly reports whether the user only ever pays the minimum.
// The liability's last payment must sit within 5% of the minimum, and when
// payment-category transactions exist the most recent up-to-3 of them must
// all sit in the same band.
func minimumPaymentOnly(liability core.Liability, txns []core.Transaction) bool {
	if liability.MinimumPayment <= 0 || liability.LastPaymentAmount <= 0 {
		return false
	}
	if !withinBand(liability.LastPaymentAmount, liability.MinimumPayment) {
		return false
	}

	payments := paymentTransactions(txns)
	if len(payments) > 3 {
		payments = payments[:3]
	}
	for _, p := range payments {
		if !withinBand(math.Abs(p.Amount), liability.MinimumPayment) {
			return false
		}
	}
	return true
}

func withinBand(payment, minimum float64) bool {
	return math.Abs(payment-minimum) <= minimumPaymentBand*minimum
}

// paymentTransactions returns payment-category transactions, most recent
// first.
func paymentTransactions(txns []core.Transaction) []core.Transaction {
	var payments []core.Transaction
	for _, t := range txns {
		if categoryContains(t, "payment") {
			payments = append(payments, t)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].Date.After(payments[j].Date) })
	return payments
}

// interestCharges sums real interest transactions when present; otherwise it
// estimates from balance and APR scaled to the window. The second return
// reports whether the value is an estimate.
func interestCharges(account core.Account, liability *core.Liability, txns []core.Transaction, windowDays int) (float64, bool) {
	var observed float64
	var found bool
	for _, t := range txns {
		if !t.IsOutflow() {
			continue
		}
		if merchantContains(t, "interest") || categoryContains(t, "interest") {
			observed += math.Abs(t.Amount)
			found = true
		}
	}
	if found {
		return observed, false
	}
	if liability == nil || liability.APR <= 0 || account.Balances.Current <= 0 {
		return 0, false
	}
	estimate := account.Balances.Current * liability.APR / 100 / 12 * (float64(windowDays) / 30)
	return estimate, true
}

func merchantContains(t core.Transaction, substr string) bool {
	return strings.Contains(strings.ToLower(t.Merchant), substr)
}

func categoryContains(t core.Transaction, substr string) bool {
	return strings.Contains(strings.ToLower(t.Category), substr) ||
		strings.Contains(strings.ToLower(t.CategoryDetail), substr)
}
