package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finpersona/internal/core"
	"finpersona/internal/payoff"
	"finpersona/internal/signals"
)

// PlanService builds debt payoff plans from liabilities and income signals.
type PlanService struct {
	store     DataStore
	publisher AuditPublisher
	now       func() time.Time
}

func NewPlanService(store DataStore, publisher AuditPublisher) *PlanService {
	return &PlanService{store: store, publisher: publisher, now: time.Now}
}

// SimulatePlan computes a payment plan for the user under the given
// strategy. A not-applicable result (no eligible debts, no surplus) comes
// back as a core.NotApplicableError for the caller to branch on.
func (s *PlanService) SimulatePlan(ctx context.Context, userID string, strategy core.PayoffStrategy) (*core.DebtPaymentPlan, error) {
	accounts, err := s.store.GetAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get accounts for %s: %w", userID, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, core.ErrUnknownUser)
	}

	debts, totalMinimums, err := s.eligibleDebts(ctx, accounts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	accountIDs := make([]string, 0, len(accounts))
	for _, a := range accounts {
		accountIDs = append(accountIDs, a.ID)
	}
	txns, err := s.store.GetTransactions(ctx, accountIDs, now.AddDate(0, 0, -DefaultWindowDays), now)
	if err != nil {
		return nil, fmt.Errorf("get transactions for %s: %w", userID, err)
	}

	income := signals.DetectIncome(txns, 0, DefaultWindowDays)
	surplus := payoff.MonthlySurplus(income.AverageMonthlyIncome, income.MonthlyExpenses, totalMinimums)

	plan, err := payoff.Simulate(debts, surplus, strategy)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishPlanComputed(ctx, userID, plan); err != nil {
			slog.WarnContext(ctx, "Failed to publish plan event",
				"user_id", userID,
				"error", err)
		}
	}
	return plan, nil
}

// eligibleDebts collects revolving accounts with a positive balance and APR,
// plus the sum of all minimum payments (owed regardless of eligibility).
func (s *PlanService) eligibleDebts(ctx context.Context, accounts []core.Account) ([]core.Debt, float64, error) {
	var debts []core.Debt
	var totalMinimums float64
	for _, a := range accounts {
		if !a.IsRevolving() {
			continue
		}
		liability, err := s.store.GetLiability(ctx, a.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("get liability for %s: %w", a.ID, err)
		}
		if liability == nil {
			continue
		}
		totalMinimums += liability.MinimumPayment
		if a.Balances.Current <= 0 || liability.APR <= 0 {
			continue
		}
		debts = append(debts, core.Debt{
			AccountID:      a.ID,
			Name:           a.Name,
			Balance:        a.Balances.Current,
			APR:            liability.APR,
			MinimumPayment: liability.MinimumPayment,
		})
	}
	return debts, totalMinimums, nil
}
