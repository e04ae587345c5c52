// Package services orchestrates the persona pipeline: it loads records from
// the data store, runs the detectors and classifier, and publishes audit
// events. All computation is synchronous and side-effect-free over its
// inputs.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finpersona/internal/core"
	"finpersona/internal/persona"
	"finpersona/internal/signals"
)

// DefaultWindowDays is the trailing window used when the caller does not ask
// for a specific one. Six months covers the trailing-average expense
// definitions.
const DefaultWindowDays = 180

// batchConcurrency bounds parallel per-user classification in ClassifyAll.
const batchConcurrency = 4

// DataStore is the read interface supplied by the data-access collaborator.
type DataStore interface {
	GetAccounts(ctx context.Context, userID string) ([]core.Account, error)
	GetTransactions(ctx context.Context, accountIDs []string, from, to time.Time) ([]core.Transaction, error)
	GetLiability(ctx context.Context, accountID string) (*core.Liability, error)
	GetAllUserIDs(ctx context.Context) ([]string, error)
}

// AuditPublisher receives classification and plan events for the external
// audit log. Publishing failures never fail the pipeline.
type AuditPublisher interface {
	PublishPersonaClassified(ctx context.Context, result *core.ClassificationResult) error
	PublishPlanComputed(ctx context.Context, userID string, plan *core.DebtPaymentPlan) error
}

// PersonaService runs signal detection and persona classification.
type PersonaService struct {
	store     DataStore
	publisher AuditPublisher
	now       func() time.Time
}

func NewPersonaService(store DataStore, publisher AuditPublisher) *PersonaService {
	return &PersonaService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// DetectSignals computes the full signal bundle for one user over the
// trailing window. A user with no accounts is unknown, not empty.
func (s *PersonaService) DetectSignals(ctx context.Context, userID string, windowDays int) (core.SignalBundle, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	accounts, err := s.store.GetAccounts(ctx, userID)
	if err != nil {
		return core.SignalBundle{}, fmt.Errorf("get accounts for %s: %w", userID, err)
	}
	if len(accounts) == 0 {
		return core.SignalBundle{}, fmt.Errorf("user %s: %w", userID, core.ErrUnknownUser)
	}

	now := s.now()
	accountIDs := make([]string, 0, len(accounts))
	for _, a := range accounts {
		accountIDs = append(accountIDs, a.ID)
	}
	txns, err := s.store.GetTransactions(ctx, accountIDs, now.AddDate(0, 0, -windowDays), now)
	if err != nil {
		return core.SignalBundle{}, fmt.Errorf("get transactions for %s: %w", userID, err)
	}

	bundle := core.SignalBundle{UserID: userID, WindowDays: windowDays}

	var checkingTotal float64
	for _, a := range accounts {
		if a.Type == core.Checking {
			checkingTotal += a.Balances.Current
		}
	}

	bundle.Income = signals.DetectIncome(txns, checkingTotal, windowDays)
	bundle.Savings = signals.DetectSavings(accounts, txns, bundle.Income.AverageMonthlyIncome, bundle.Income.MonthlyExpenses, windowDays)
	bundle.Subscriptions = signals.DetectSubscriptions(txns, bundle.Income.MonthlyExpenses)
	bundle.Spending = signals.DetectSpending(txns, bundle.Income.AverageMonthlyIncome, windowDays)

	txnsByAccount := make(map[string][]core.Transaction)
	for _, t := range txns {
		txnsByAccount[t.AccountID] = append(txnsByAccount[t.AccountID], t)
	}

	for _, a := range accounts {
		if !a.IsRevolving() {
			continue
		}
		liability, err := s.store.GetLiability(ctx, a.ID)
		if err != nil {
			return core.SignalBundle{}, fmt.Errorf("get liability for %s: %w", a.ID, err)
		}
		credit, err := signals.DetectCredit(a, liability, txnsByAccount[a.ID], windowDays, now)
		if err != nil {
			return core.SignalBundle{}, fmt.Errorf("detect credit signals: %w", err)
		}
		bundle.CreditAccounts = append(bundle.CreditAccounts, credit)
		if credit.Utilization >= bundle.Credit.Utilization || bundle.Credit.AccountID == "" {
			bundle.Credit = credit
		}
	}

	return bundle, nil
}

// Classify runs the full pipeline for one user and publishes the audit
// event. Returns (nil, nil) when no persona matches.
func (s *PersonaService) Classify(ctx context.Context, userID string) (*core.ClassificationResult, error) {
	return s.classify(ctx, userID, true)
}

func (s *PersonaService) classify(ctx context.Context, userID string, publish bool) (*core.ClassificationResult, error) {
	bundle, err := s.DetectSignals(ctx, userID, DefaultWindowDays)
	if err != nil {
		return nil, err
	}

	topQuartile, err := s.incomeInTopQuartile(ctx, bundle.Spending.MonthlyIncome)
	if err != nil {
		return nil, fmt.Errorf("compute income percentile: %w", err)
	}
	bundle.Spending.IncomeTopQuartile = topQuartile

	result := persona.Classify(bundle)
	if result == nil {
		slog.InfoContext(ctx, "No persona matched", "user_id", userID)
		return nil, nil
	}

	if publish && s.publisher != nil {
		if err := s.publisher.PublishPersonaClassified(ctx, result); err != nil {
			slog.WarnContext(ctx, "Failed to publish classification event",
				"user_id", userID,
				"error", err)
		}
	}
	return result, nil
}

// incomeInTopQuartile compares one user's monthly income against the 75th
// percentile of monthly income across all users. Users whose records cannot
// be read are left out of the percentile rather than failing the caller.
func (s *PersonaService) incomeInTopQuartile(ctx context.Context, monthlyIncome float64) (bool, error) {
	if monthlyIncome <= 0 {
		return false, nil
	}

	userIDs, err := s.store.GetAllUserIDs(ctx)
	if err != nil {
		return false, fmt.Errorf("get user ids: %w", err)
	}
	if len(userIDs) == 0 {
		return false, nil
	}

	now := s.now()
	from := now.AddDate(0, 0, -DefaultWindowDays)

	incomes := make([]float64, 0, len(userIDs))
	for _, id := range userIDs {
		accounts, err := s.store.GetAccounts(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "Skipping user in income percentile",
				"user_id", id,
				"error", err)
			continue
		}
		if len(accounts) == 0 {
			continue
		}
		accountIDs := make([]string, 0, len(accounts))
		for _, a := range accounts {
			accountIDs = append(accountIDs, a.ID)
		}
		txns, err := s.store.GetTransactions(ctx, accountIDs, from, now)
		if err != nil {
			slog.WarnContext(ctx, "Skipping user in income percentile",
				"user_id", id,
				"error", err)
			continue
		}
		income := signals.DetectIncome(txns, 0, DefaultWindowDays)
		incomes = append(incomes, income.AverageMonthlyIncome)
	}
	if len(incomes) == 0 {
		return false, nil
	}

	threshold := signals.Percentile(incomes, 75)
	return threshold > 0 && monthlyIncome >= threshold, nil
}

// BatchOutcome is one user's result in a ClassifyAll run.
type BatchOutcome struct {
	Result *core.ClassificationResult
	Err    error
}

// ClassifyAll classifies every known user. Users run in parallel with
// bounded concurrency, and one user's failure is recorded in their outcome
// instead of aborting the batch.
func (s *PersonaService) ClassifyAll(ctx context.Context) (map[string]BatchOutcome, error) {
	userIDs, err := s.store.GetAllUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get user ids: %w", err)
	}

	var mu sync.Mutex
	outcomes := make(map[string]BatchOutcome, len(userIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			result, err := s.Classify(ctx, userID)
			if err != nil {
				slog.ErrorContext(ctx, "Classification failed",
					"user_id", userID,
					"error", err)
			}
			mu.Lock()
			outcomes[userID] = BatchOutcome{Result: result, Err: err}
			mu.Unlock()
			return nil // per-user failures stay per-user
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
