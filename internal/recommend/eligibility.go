// Package recommend gates partner offers and ranks recommendations for a
// classified user.
package recommend

import (
	"strings"

	"finpersona/internal/core"
)

// predatoryTypes are rejected unconditionally, before any criteria run.
var predatoryTypes = []string{
	"payday_loan",
	"cash_advance",
	"check_cashing",
	"rent_to_own",
	"credit_repair",
}

// Credit score estimation bands. The score is derived, not sourced from a
// bureau, and only serves offer gating.
const (
	scoreBase    = 700
	scoreFloor   = 500
	scoreCeiling = 850
)

// CheckEligibility reports whether an offer may be shown to the user.
// Blacklisted offer types never pass; otherwise every present criterion must
// hold.
func CheckEligibility(offer core.Offer, bundle core.SignalBundle, personaType core.PersonaType, accounts []core.Account) bool {
	if isPredatory(offer.Type) {
		return false
	}
	if offer.Persona != "" && offer.Persona != personaType {
		return false
	}
	if offer.MinCreditScore != nil && EstimateCreditScore(bundle) < *offer.MinCreditScore {
		return false
	}
	if offer.MaxUtilization != nil && bundle.Credit.Utilization > *offer.MaxUtilization {
		return false
	}
	if offer.MinIncome != nil && bundle.Income.AverageMonthlyIncome < *offer.MinIncome {
		return false
	}
	if offer.MinSubscriptions != nil && bundle.Subscriptions.RecurringCount < *offer.MinSubscriptions {
		return false
	}
	if matchesExisting(offer.ExcludeExisting, accounts, true) {
		return false
	}
	if matchesExisting(offer.ExcludeAccountTypes, accounts, false) {
		return false
	}
	return true
}

// EstimateCreditScore derives a rough score from utilization and overdue
// state: base 700, one band deduction, clamped to [500,850].
func EstimateCreditScore(bundle core.SignalBundle) int {
	score := scoreBase
	switch u := bundle.Credit.Utilization; {
	case u > 80:
		score -= 50
	case u > 50:
		score -= 30
	case u > 30:
		score -= 10
	}
	if bundle.AnyOverdue() {
		score -= 40
	}
	if score < scoreFloor {
		return scoreFloor
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}

func isPredatory(offerType string) bool {
	normalized := normalize(offerType)
	for _, p := range predatoryTypes {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

// matchesExisting reports whether any exclusion token matches one of the
// user's accounts. Tokens match case-insensitive substrings of the account
// type, and for the broader existing-account exclusion also the subtype and
// the account name carried in the balances payload.
func matchesExisting(tokens []string, accounts []core.Account, includeNames bool) bool {
	for _, token := range tokens {
		needle := normalize(token)
		if needle == "" {
			continue
		}
		for _, a := range accounts {
			if strings.Contains(normalize(string(a.Type)), needle) {
				return true
			}
			if includeNames &&
				(strings.Contains(normalize(a.Subtype), needle) ||
					strings.Contains(normalize(a.Name), needle)) {
				return true
			}
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}
