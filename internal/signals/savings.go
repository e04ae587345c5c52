package signals

import (
	"finpersona/internal/core"
)

// DetectSavings derives growth and coverage signals from savings-like
// accounts and their transactions. monthlyIncome and monthlyExpenses come
// from the income detector; zero values degrade the dependent ratios to 0.
func DetectSavings(accounts []core.Account, txns []core.Transaction, monthlyIncome, monthlyExpenses float64, windowDays int) core.SavingsSignals {
	savingsIDs := make(map[string]bool)
	var sig core.SavingsSignals
	for _, a := range accounts {
		if a.IsSavingsLike() {
			savingsIDs[a.ID] = true
			sig.TotalBalance += a.Balances.Current
		}
	}
	if len(savingsIDs) == 0 {
		return core.SavingsSignals{}
	}

	var netInflow float64
	for _, t := range txns {
		if savingsIDs[t.AccountID] {
			netInflow += t.Amount
		}
	}

	months := monthsInWindow(windowDays)
	sig.NetMonthlyInflow = netInflow / months

	// Growth compares the current balance with the balance reconstructed at
	// the start of the window. A non-positive starting balance would divide
	// by zero; product defines growth as 100 when anything was accumulated
	// and 0 otherwise.
	starting := sig.TotalBalance - netInflow
	switch {
	case starting > 0:
		sig.GrowthRatePct = (sig.TotalBalance - starting) / starting * 100
	case sig.TotalBalance > 0:
		sig.GrowthRatePct = 100
	default:
		sig.GrowthRatePct = 0
	}

	if monthlyExpenses > 0 {
		sig.EmergencyFundMonths = sig.TotalBalance / monthlyExpenses
	}
	if monthlyIncome > 0 {
		sig.SavingsRatePct = sig.NetMonthlyInflow / monthlyIncome * 100
	}
	return sig
}
