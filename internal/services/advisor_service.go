package services

import (
	"context"
	"fmt"

	"finpersona/internal/core"
	"finpersona/internal/recommend"
)

// AdvisorService ranks recommendations and gates partner offers for a
// classified user.
type AdvisorService struct {
	personas *PersonaService
}

func NewAdvisorService(personas *PersonaService) *AdvisorService {
	return &AdvisorService{personas: personas}
}

// RankRecommendations scores and orders the candidates for the user's
// current persona, truncated to limit.
func (s *AdvisorService) RankRecommendations(ctx context.Context, userID string, candidates []core.Recommendation, limit int) ([]core.RankedRecommendation, error) {
	result, err := s.personas.classify(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", userID, err)
	}

	var bundle core.SignalBundle
	var personaType core.PersonaType
	if result != nil {
		bundle = result.Primary.Signals
		personaType = result.Primary.Persona
	} else {
		// No persona matched: rank on raw signals with no persona-specific
		// impact table.
		bundle, err = s.personas.DetectSignals(ctx, userID, DefaultWindowDays)
		if err != nil {
			return nil, err
		}
	}

	return recommend.Rank(candidates, bundle, personaType, limit), nil
}

// CheckEligibility reports whether the offer may be shown to the user.
func (s *AdvisorService) CheckEligibility(ctx context.Context, userID string, offer core.Offer) (bool, error) {
	result, err := s.personas.classify(ctx, userID, false)
	if err != nil {
		return false, fmt.Errorf("classify %s: %w", userID, err)
	}

	var bundle core.SignalBundle
	var personaType core.PersonaType
	if result != nil {
		bundle = result.Primary.Signals
		personaType = result.Primary.Persona
	} else {
		bundle, err = s.personas.DetectSignals(ctx, userID, DefaultWindowDays)
		if err != nil {
			return false, err
		}
	}

	accounts, err := s.personas.store.GetAccounts(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get accounts for %s: %w", userID, err)
	}

	return recommend.CheckEligibility(offer, bundle, personaType, accounts), nil
}
