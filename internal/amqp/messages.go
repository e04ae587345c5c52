package amqp

import (
	"encoding/json"
	"time"

	"finpersona/internal/core"
)

// PersonaClassifiedMessage is the audit event published after every
// classification. The audit-log service owns retention; the message carries
// only what it needs to record the decision.
type PersonaClassifiedMessage struct {
	UserID     string           `json:"user_id"`
	Persona    core.PersonaType `json:"persona"`
	Criteria   []string         `json:"criteria"`
	Confidence float64          `json:"confidence"`
	Secondary  []string         `json:"secondary,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

func NewPersonaClassifiedMessage(result *core.ClassificationResult) *PersonaClassifiedMessage {
	msg := &PersonaClassifiedMessage{
		UserID:     result.Primary.Signals.UserID,
		Persona:    result.Primary.Persona,
		Criteria:   result.Primary.Criteria,
		Confidence: result.Primary.Confidence,
		Timestamp:  time.Now(),
	}
	for _, s := range result.Secondary {
		msg.Secondary = append(msg.Secondary, string(s.Persona))
	}
	return msg
}

func (m *PersonaClassifiedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PersonaClassifiedMessageFromJSON(data []byte) (*PersonaClassifiedMessage, error) {
	var msg PersonaClassifiedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// PlanComputedMessage records a debt payoff simulation for the audit trail.
type PlanComputedMessage struct {
	UserID             string              `json:"user_id"`
	Strategy           core.PayoffStrategy `json:"strategy"`
	MonthsToDebtFree   int                 `json:"months_to_debt_free"`
	TotalInterestSaved float64             `json:"total_interest_saved"`
	Timestamp          time.Time           `json:"timestamp"`
}

func NewPlanComputedMessage(userID string, plan *core.DebtPaymentPlan) *PlanComputedMessage {
	return &PlanComputedMessage{
		UserID:             userID,
		Strategy:           plan.Strategy,
		MonthsToDebtFree:   plan.MonthsToDebtFree,
		TotalInterestSaved: plan.TotalInterestSaved,
		Timestamp:          time.Now(),
	}
}

func (m *PlanComputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PlanComputedMessageFromJSON(data []byte) (*PlanComputedMessage, error) {
	var msg PlanComputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
