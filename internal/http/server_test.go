package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finpersona/internal/core"
)

type fakePersonas struct {
	bundle core.SignalBundle
	result *core.ClassificationResult
	err    error
}

func (f *fakePersonas) DetectSignals(_ context.Context, userID string, windowDays int) (core.SignalBundle, error) {
	if f.err != nil {
		return core.SignalBundle{}, f.err
	}
	b := f.bundle
	b.UserID = userID
	b.WindowDays = windowDays
	return b, nil
}

func (f *fakePersonas) Classify(_ context.Context, _ string) (*core.ClassificationResult, error) {
	return f.result, f.err
}

type fakeAdvisor struct {
	ranked   []core.RankedRecommendation
	eligible bool
	err      error
}

func (f *fakeAdvisor) RankRecommendations(_ context.Context, _ string, _ []core.Recommendation, _ int) ([]core.RankedRecommendation, error) {
	return f.ranked, f.err
}

func (f *fakeAdvisor) CheckEligibility(_ context.Context, _ string, _ core.Offer) (bool, error) {
	return f.eligible, f.err
}

type fakePlanner struct {
	plan *core.DebtPaymentPlan
	err  error
}

func (f *fakePlanner) SimulatePlan(_ context.Context, _ string, strategy core.PayoffStrategy) (*core.DebtPaymentPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.plan
	p.Strategy = strategy
	return &p, nil
}

type fakeRationales struct{}

func (fakeRationales) Rationale(_ context.Context, a core.PersonaAssignment) string {
	return "explanation for " + string(a.Persona)
}

func newTestServer(personas PersonaProvider, advisor Advisor, planner Planner) *Server {
	srv := NewServer(":0", personas, advisor, planner, fakeRationales{})
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleSignals(t *testing.T) {
	personas := &fakePersonas{bundle: core.SignalBundle{
		Credit: core.CreditSignals{AccountID: "acc1", Utilization: 65, Bucket: core.BucketHigh},
	}}
	srv := newTestServer(personas, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/signals?window=90", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var body signalsBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.UserID != "u1" || body.WindowDays != 90 {
		t.Errorf("user_id=%s window_days=%d, want u1/90", body.UserID, body.WindowDays)
	}
	if body.Credit.Bucket != "high" {
		t.Errorf("credit bucket = %s, want high", body.Credit.Bucket)
	}
}

func TestHandleSignals_BadWindow(t *testing.T) {
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/signals?window=soon", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSignals_UnknownUser(t *testing.T) {
	personas := &fakePersonas{err: core.ErrUnknownUser}
	srv := newTestServer(personas, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/nobody/signals", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlePersona(t *testing.T) {
	personas := &fakePersonas{result: &core.ClassificationResult{
		Primary: core.PersonaAssignment{
			Persona:    core.PersonaHighUtilization,
			Criteria:   []string{"utilization_50_plus"},
			Confidence: 0.65,
		},
		Secondary: []core.PersonaAssignment{
			{Persona: core.PersonaSubscriptionHeavy, Criteria: []string{"recurring_merchants_3_plus"}, Confidence: 0.8},
		},
	}}
	srv := newTestServer(personas, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/persona", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body personaBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Matched || body.Persona != "high_utilization" {
		t.Errorf("body = %+v, want matched high_utilization", body)
	}
	if body.Rationale != "explanation for high_utilization" {
		t.Errorf("rationale = %q, want the generated explanation", body.Rationale)
	}
	if len(body.Secondary) != 1 || body.Secondary[0].Persona != "subscription_heavy" {
		t.Errorf("secondary = %+v, want subscription_heavy", body.Secondary)
	}
}

func TestHandlePersona_NoMatch(t *testing.T) {
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/persona", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body personaBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Matched {
		t.Errorf("matched = true, want false when no persona applies")
	}
}

func TestHandleRecommendations(t *testing.T) {
	advisor := &fakeAdvisor{ranked: []core.RankedRecommendation{
		{
			Recommendation: core.Recommendation{Kind: "balance_transfer_card", Title: "Transfer"},
			ImpactScore:    100, UrgencyScore: 90, PriorityScore: 96,
		},
	}}
	srv := newTestServer(&fakePersonas{}, advisor, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	payload := `{"candidates":[{"kind":"balance_transfer_card","title":"Transfer"}],"limit":5}`
	rec := doRequest(t, srv, http.MethodPost, "/api/users/u1/recommendations", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var body rankedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Recommendations) != 1 || body.Recommendations[0].PriorityScore != 96 {
		t.Errorf("recommendations = %+v, want one scored item", body.Recommendations)
	}
}

func TestHandleRecommendations_BadInput(t *testing.T) {
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	tests := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{"malformed json", `{"candidates":`, http.StatusBadRequest},
		{"unknown field", `{"wishes":[]}`, http.StatusBadRequest},
		{"empty candidates", `{"candidates":[]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/users/u1/recommendations", tt.payload)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleEligibility(t *testing.T) {
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{eligible: true}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	payload := `{"offer":{"id":"o1","type":"hysa"}}`
	rec := doRequest(t, srv, http.MethodPost, "/api/users/u1/eligibility", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var body eligibilityBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Eligible || body.OfferID != "o1" {
		t.Errorf("body = %+v, want eligible o1", body)
	}
}

func TestHandleEligibility_MissingOfferFields(t *testing.T) {
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodPost, "/api/users/u1/eligibility", `{"offer":{"title":"Mystery"}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandlePaymentPlan(t *testing.T) {
	planner := &fakePlanner{plan: &core.DebtPaymentPlan{
		Debts:            []core.DebtSchedule{{AccountID: "card1", StartingBalance: 5000, PayoffMonth: 12}},
		TotalDebt:        5000,
		MonthsToDebtFree: 12,
		MonthlySurplus:   150,
		Timeline: map[string][]core.PlanMonth{
			"card1": {{Month: 1, Payment: 250, Balance: 4800}},
		},
	}}
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, planner)
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/payment-plan?strategy=snowball", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body planBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Applicable || body.Strategy != "snowball" {
		t.Errorf("body = %+v, want applicable snowball plan", body)
	}
	if body.MonthsToDebtFree != 12 || len(body.Timeline["card1"]) != 1 {
		t.Errorf("plan fields not carried through: %+v", body)
	}
}

func TestHandlePaymentPlan_DefaultsToAvalanche(t *testing.T) {
	planner := &fakePlanner{plan: &core.DebtPaymentPlan{MonthsToDebtFree: 1}}
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, planner)
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/payment-plan", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body planBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Strategy != "avalanche" {
		t.Errorf("strategy = %s, want avalanche default", body.Strategy)
	}
}

func TestHandlePaymentPlan_InvalidStrategy(t *testing.T) {
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/payment-plan?strategy=tornado", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlePaymentPlan_NotApplicable(t *testing.T) {
	planner := &fakePlanner{err: &core.NotApplicableError{Reason: "no_debts"}}
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, planner)
	defer srv.Shutdown(context.Background())

	rec := doRequest(t, srv, http.MethodGet, "/api/users/u1/payment-plan", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for not-applicable", rec.Code)
	}

	var body planBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Applicable || body.Reason != "no_debts" {
		t.Errorf("body = %+v, want applicable=false reason=no_debts", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(&fakePersonas{}, &fakeAdvisor{}, &fakePlanner{})
	defer srv.Shutdown(context.Background())

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
