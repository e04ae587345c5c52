// Package payoff simulates month-by-month debt amortization under avalanche
// or snowball ordering with surplus rollover.
package payoff

import (
	"fmt"
	"math"
	"sort"

	"finpersona/internal/core"
)

const (
	// maxMonths caps non-converging simulations, e.g. a payment below the
	// monthly interest accrual.
	maxMonths = 600

	// paidOffThreshold treats sub-cent residue as paid.
	paidOffThreshold = 0.01

	// safetyBuffer is the share of the raw surplus withheld from the plan.
	safetyBuffer = 0.20
)

// MonthlySurplus converts income, expenses and committed minimum payments
// into the surplus available for extra debt payments, reduced by the safety
// buffer and floored at 0.
func MonthlySurplus(monthlyIncome, monthlyExpenses, totalMinimums float64) float64 {
	surplus := monthlyIncome - monthlyExpenses - totalMinimums
	if surplus <= 0 {
		return 0
	}
	return surplus * (1 - safetyBuffer)
}

// Simulate produces a payment plan for the given debts and monthly surplus.
// Debts must already be filtered to balance > 0 and APR > 0. Zero surplus or
// zero debts yields a NotApplicableError, which is a result to branch on,
// not a computation failure.
func Simulate(debts []core.Debt, surplus float64, strategy core.PayoffStrategy) (*core.DebtPaymentPlan, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown payoff strategy %q", strategy)
	}
	if len(debts) == 0 {
		return nil, &core.NotApplicableError{Reason: "no_debts"}
	}
	if surplus <= 0 {
		return nil, &core.NotApplicableError{Reason: "no_surplus"}
	}

	ordered := orderDebts(debts, strategy)

	plan := &core.DebtPaymentPlan{
		Strategy:       strategy,
		MonthlySurplus: surplus,
		Timeline:       make(map[string][]core.PlanMonth, len(ordered)),
	}

	// Each debt's constant monthly payment is its own minimum plus the
	// rollover pool: the surplus, plus the released minimum of every debt
	// earlier in the order.
	rollover := surplus
	for _, debt := range ordered {
		payment := debt.MinimumPayment + rollover
		schedule, timeline := amortize(debt, payment)
		plan.Debts = append(plan.Debts, schedule)
		plan.Timeline[debt.AccountID] = timeline

		plan.TotalDebt += debt.Balance
		plan.TotalInterest += schedule.InterestPaid
		if schedule.PayoffMonth > plan.MonthsToDebtFree {
			plan.MonthsToDebtFree = schedule.PayoffMonth
		}
		rollover += debt.MinimumPayment
	}

	plan.TotalInterestSaved = minimumOnlyInterest(debts) - plan.TotalInterest
	return plan, nil
}

// orderDebts returns a copy sorted for the strategy: avalanche by APR
// descending, snowball by balance ascending. The sorts are stable so equal
// debts keep their input order.
func orderDebts(debts []core.Debt, strategy core.PayoffStrategy) []core.Debt {
	ordered := make([]core.Debt, len(debts))
	copy(ordered, debts)
	if strategy == core.StrategyAvalanche {
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].APR > ordered[j].APR })
	} else {
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Balance < ordered[j].Balance })
	}
	return ordered
}

// amortize runs one debt month by month at a constant payment until payoff
// or the month cap.
func amortize(debt core.Debt, payment float64) (core.DebtSchedule, []core.PlanMonth) {
	schedule := core.DebtSchedule{
		AccountID:       debt.AccountID,
		Name:            debt.Name,
		StartingBalance: debt.Balance,
		APR:             debt.APR,
		MonthlyPayment:  payment,
	}

	monthlyRate := debt.APR / 100 / 12
	balance := debt.Balance
	var timeline []core.PlanMonth

	for month := 1; month <= maxMonths; month++ {
		interest := balance * monthlyRate
		principal := math.Min(payment-interest, balance)
		balance -= principal
		schedule.InterestPaid += interest
		schedule.PayoffMonth = month

		paid := payment
		if principal < payment-interest {
			// Final month: only the remaining balance plus interest is due.
			paid = principal + interest
		}
		timeline = append(timeline, core.PlanMonth{Month: month, Payment: paid, Balance: math.Max(balance, 0)})

		if balance <= paidOffThreshold {
			break
		}
	}
	return schedule, timeline
}

// minimumOnlyInterest sums the interest each debt would accrue if only its
// minimum payment were ever made, under the same month cap.
func minimumOnlyInterest(debts []core.Debt) float64 {
	var total float64
	for _, debt := range debts {
		schedule, _ := amortize(debt, debt.MinimumPayment)
		total += schedule.InterestPaid
	}
	return total
}
