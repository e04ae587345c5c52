// Package persona resolves detector signals into one of five mutually
// exclusive behavioral classifications.
package persona

import (
	"math"

	"finpersona/internal/core"
)

// priority orders personas for resolution; lower index wins.
var priority = []core.PersonaType{
	core.PersonaHighUtilization,
	core.PersonaVariableIncome,
	core.PersonaLifestyleCreep,
	core.PersonaSubscriptionHeavy,
	core.PersonaSavingsBuilder,
}

// weakCriteria are the High Utilization criteria that do not require the
// utilization ratio itself to reach 50. A match built only on these can be
// displaced by a strongly confident alternative.
var weakCriteria = map[string]bool{
	CriterionInterestCharges:    true,
	CriterionMinimumPaymentOnly: true,
}

// overrideMargin is the confidence lead an alternative persona needs to
// displace a weak High Utilization match.
const overrideMargin = 0.2

// Classify evaluates every persona matcher independently, then resolves the
// matches by fixed priority and applies the weak-signal override rule.
// Returns nil when no persona matches.
func Classify(bundle core.SignalBundle) *core.ClassificationResult {
	matched := evaluateAll(bundle)
	if len(matched) == 0 {
		return nil
	}

	primary, rest := resolve(matched)
	return &core.ClassificationResult{Primary: primary, Secondary: rest}
}

// evaluateAll runs each matcher in priority order and keeps the ones that
// fired.
func evaluateAll(bundle core.SignalBundle) []core.PersonaAssignment {
	matchers := []func(core.SignalBundle) (core.PersonaAssignment, bool){
		matchHighUtilization,
		matchVariableIncome,
		matchLifestyleCreep,
		matchSubscriptionHeavy,
		matchSavingsBuilder,
	}

	var matched []core.PersonaAssignment
	for _, match := range matchers {
		if assignment, ok := match(bundle); ok {
			matched = append(matched, assignment)
		}
	}
	return matched
}

// resolve picks the highest-priority match as primary, then applies the one
// documented override: a High Utilization match carried only by weak
// criteria yields to another persona whose confidence leads by more than the
// margin.
func resolve(matched []core.PersonaAssignment) (core.PersonaAssignment, []core.PersonaAssignment) {
	primary := matched[0]

	if primary.Persona == core.PersonaHighUtilization && onlyWeakCriteria(primary.Criteria) {
		if challenger, ok := bestAlternative(matched); ok &&
			challenger.Confidence-primary.Confidence > overrideMargin {
			primary = challenger
		}
	}

	secondary := make([]core.PersonaAssignment, 0, len(matched)-1)
	for _, m := range matched {
		if m.Persona != primary.Persona {
			secondary = append(secondary, m)
		}
	}
	return primary, secondary
}

// bestAlternative returns the most confident non-High-Utilization match.
func bestAlternative(matched []core.PersonaAssignment) (core.PersonaAssignment, bool) {
	var best core.PersonaAssignment
	var found bool
	for _, m := range matched {
		if m.Persona == core.PersonaHighUtilization {
			continue
		}
		if !found || m.Confidence > best.Confidence {
			best = m
			found = true
		}
	}
	return best, found
}

func onlyWeakCriteria(criteria []string) bool {
	for _, c := range criteria {
		if !weakCriteria[c] {
			return false
		}
	}
	return len(criteria) > 0
}

// confidence maps a satisfied-criteria count to [0,1].
func confidence(criteriaCount int) float64 {
	return math.Min(1, 0.5+0.15*float64(criteriaCount))
}
