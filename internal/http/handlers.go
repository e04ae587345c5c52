package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"finpersona/internal/core"
)

// maxBodyBytes caps request bodies; candidate lists are small.
const maxBodyBytes = 1 << 20

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	windowDays := 0
	if v := r.URL.Query().Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "window must be a positive number of days")
			return
		}
		windowDays = n
	}

	bundle, err := s.personas.DetectSignals(r.Context(), userID, windowDays)
	if err != nil {
		s.writeServiceError(w, r, "Signal detection failed", userID, err)
		return
	}
	writeJSON(w, http.StatusOK, signalsResponse(bundle))
}

func (s *Server) handlePersona(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	result, err := s.personas.Classify(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, "Classification failed", userID, err)
		return
	}
	if result == nil {
		writeJSON(w, http.StatusOK, personaBody{Matched: false})
		return
	}

	body := personaBody{
		Matched:    true,
		Persona:    string(result.Primary.Persona),
		Criteria:   result.Primary.Criteria,
		Confidence: result.Primary.Confidence,
	}
	if s.rationales != nil {
		body.Rationale = s.rationales.Rationale(r.Context(), result.Primary)
	}
	for _, sec := range result.Secondary {
		body.Secondary = append(body.Secondary, secondaryPersona{
			Persona:    string(sec.Persona),
			Criteria:   sec.Criteria,
			Confidence: sec.Confidence,
		})
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req recommendationsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Candidates) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "candidates cannot be empty")
		return
	}

	candidates := make([]core.Recommendation, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		candidates = append(candidates, core.Recommendation{
			Type:           core.RecommendationType(c.Type),
			Kind:           c.Kind,
			Title:          c.Title,
			Description:    c.Description,
			ImpactEstimate: c.ImpactEstimate,
		})
	}

	ranked, err := s.advisor.RankRecommendations(r.Context(), userID, candidates, req.Limit)
	if err != nil {
		s.writeServiceError(w, r, "Recommendation ranking failed", userID, err)
		return
	}

	body := rankedResponse{Recommendations: make([]rankedItem, 0, len(ranked))}
	for _, rec := range ranked {
		body.Recommendations = append(body.Recommendations, rankedItem{
			candidateItem: candidateItem{
				Type:           string(rec.Type),
				Kind:           rec.Kind,
				Title:          rec.Title,
				Description:    rec.Description,
				ImpactEstimate: rec.ImpactEstimate,
			},
			ImpactScore:   rec.ImpactScore,
			UrgencyScore:  rec.UrgencyScore,
			PriorityScore: rec.PriorityScore,
		})
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req offerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Offer.ID == "" || req.Offer.Type == "" {
		writeError(w, http.StatusUnprocessableEntity, "offer id and type are required")
		return
	}

	offer := core.Offer{
		ID:                  req.Offer.ID,
		Type:                req.Offer.Type,
		Title:               req.Offer.Title,
		Persona:             core.PersonaType(req.Offer.Persona),
		MinCreditScore:      req.Offer.MinCreditScore,
		MaxUtilization:      req.Offer.MaxUtilization,
		MinIncome:           req.Offer.MinIncome,
		MinSubscriptions:    req.Offer.MinSubscriptions,
		ExcludeExisting:     req.Offer.ExcludeExisting,
		ExcludeAccountTypes: req.Offer.ExcludeAccountTypes,
	}

	eligible, err := s.advisor.CheckEligibility(r.Context(), userID, offer)
	if err != nil {
		s.writeServiceError(w, r, "Eligibility check failed", userID, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibilityBody{OfferID: offer.ID, Eligible: eligible})
}

func (s *Server) handlePaymentPlan(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	strategy := core.PayoffStrategy(r.URL.Query().Get("strategy"))
	if strategy == "" {
		strategy = core.StrategyAvalanche
	}
	if !strategy.Valid() {
		writeError(w, http.StatusBadRequest, "strategy must be avalanche or snowball")
		return
	}

	plan, err := s.planner.SimulatePlan(r.Context(), userID, strategy)
	if err != nil {
		var na *core.NotApplicableError
		if errors.As(err, &na) {
			writeJSON(w, http.StatusOK, planBody{Applicable: false, Reason: na.Reason})
			return
		}
		s.writeServiceError(w, r, "Plan simulation failed", userID, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse(plan))
}

// writeServiceError maps service errors onto status codes: unknown user is
// 404, everything else 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, msg, userID string, err error) {
	if errors.Is(err, core.ErrUnknownUser) {
		writeError(w, http.StatusNotFound, "unknown user")
		return
	}
	slog.ErrorContext(r.Context(), msg, "user_id", userID, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeBody decodes the JSON body into dst, writing a 400 and returning
// false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
