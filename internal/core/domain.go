package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Checking    AccountType = "checking"
	Savings     AccountType = "savings"
	Credit      AccountType = "credit"
	MoneyMarket AccountType = "money_market"
	HSA         AccountType = "hsa"
	Loan        AccountType = "loan"
)

type (
	AccountType string

	// Balances is the structured balance record for an account. It is stored
	// and transported as three distinct fields; any layer serializing it must
	// round-trip all three exactly.
	Balances struct {
		Available float64
		Current   float64
		Limit     float64 // 0 for non-revolving accounts
	}

	Account struct {
		ID       string
		UserID   string
		Name     string
		Type     AccountType
		Subtype  string
		Balances Balances
	}

	// Transaction is immutable once created. Amount is signed: negative
	// values are outflows.
	Transaction struct {
		ID             string
		AccountID      string
		Date           time.Time
		Amount         float64
		Merchant       string
		Category       string
		CategoryDetail string
		PaymentChannel string
	}

	// Liability carries the credit/loan terms for a single account.
	Liability struct {
		AccountID            string
		APR                  float64
		MinimumPayment       float64
		LastPaymentAmount    float64
		LastStatementBalance float64
		IsOverdue            bool
		NextDueDate          time.Time
	}
)

var (
	ErrUnknownUser      = errors.New("unknown user")
	ErrUnknownAccount   = errors.New("unknown account")
	ErrWrongAccountType = errors.New("wrong account type")
)

// NotApplicableError reports that a payment plan cannot be produced for a
// user. It is a result the caller must branch on, not a computation failure.
type NotApplicableError struct {
	Reason string // "no_debts" or "no_surplus"
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("payment plan not applicable: %s", e.Reason)
}

// IsNotApplicable reports whether err is a plan not-applicable result.
func IsNotApplicable(err error) bool {
	var na *NotApplicableError
	return errors.As(err, &na)
}

// IsRevolving reports whether the account carries a credit limit.
func (a Account) IsRevolving() bool {
	return a.Type == Credit || a.Type == Loan
}

// IsSavingsLike reports whether the account counts toward savings metrics.
func (a Account) IsSavingsLike() bool {
	return a.Type == Savings || a.Type == MoneyMarket || a.Type == HSA
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("empty account id")
	}
	if strings.TrimSpace(a.UserID) == "" {
		return errors.New("empty user id")
	}
	switch a.Type {
	case Checking, Savings, Credit, MoneyMarket, HSA, Loan:
	default:
		return fmt.Errorf("invalid account type %q", a.Type)
	}
	if !a.IsRevolving() && a.Balances.Limit != 0 {
		return fmt.Errorf("account %s: limit set on non-revolving account", a.ID)
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("empty transaction id")
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return errors.New("empty account reference")
	}
	if t.Date.IsZero() {
		return errors.New("transaction date cannot be zero")
	}
	return nil
}

func (l Liability) Validate() error {
	if strings.TrimSpace(l.AccountID) == "" {
		return errors.New("empty account reference")
	}
	if l.APR < 0 {
		return errors.New("negative APR")
	}
	if l.MinimumPayment < 0 {
		return errors.New("negative minimum payment")
	}
	return nil
}

// IsOutflow reports whether the transaction moves money out of the account.
func (t Transaction) IsOutflow() bool { return t.Amount < 0 }

// IsInflow reports whether the transaction moves money into the account.
func (t Transaction) IsInflow() bool { return t.Amount > 0 }
