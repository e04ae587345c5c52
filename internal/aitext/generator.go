// Package aitext produces user-facing rationale text for persona
// assignments. The LLM backend is consumed as a plain function; failures
// fall over to deterministic templates so the pipeline never depends on it.
package aitext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finpersona/internal/cache"
	"finpersona/internal/core"
)

// TextFunc is the LLM collaborator: prompt in, text out.
type TextFunc func(ctx context.Context, prompt string) (string, error)

// fallbackTemplates render a rationale without the LLM. %s receives the
// joined criteria list.
var fallbackTemplates = map[core.PersonaType]string{
	core.PersonaHighUtilization:   "Your credit usage is working against you right now (%s). Paying balances down below 30%% of your limits is the fastest lever you have.",
	core.PersonaVariableIncome:    "Your income arrives on an irregular schedule (%s). A cash cushion of at least one month of expenses smooths the gaps.",
	core.PersonaLifestyleCreep:    "Your spending has grown alongside your income (%s). Redirecting part of it to savings locks in the raise.",
	core.PersonaSubscriptionHeavy: "Recurring subscriptions make up a meaningful slice of your spending (%s). An audit usually finds a few that no longer earn their keep.",
	core.PersonaSavingsBuilder:    "You are building savings steadily (%s). A higher-yield account would make the same habit earn more.",
}

// Generator builds rationales, caching responses per user and persona.
type Generator struct {
	text     TextFunc
	cache    *cache.LRU[string]
	cacheTTL time.Duration
}

// NewGenerator wires a generator. text may be nil, in which case templates
// are always used. stats receives the cache's hit/miss accounting.
func NewGenerator(text TextFunc, cacheSize int, cacheTTL time.Duration, stats *cache.Stats) *Generator {
	return &Generator{
		text:     text,
		cache:    cache.NewLRU[string](cacheSize, cacheTTL, stats),
		cacheTTL: cacheTTL,
	}
}

// Rationale returns explanation text for an assignment, serving from cache
// when possible.
func (g *Generator) Rationale(ctx context.Context, assignment core.PersonaAssignment) string {
	key := cacheKey(assignment)
	if cached, ok := g.cache.Get(key); ok {
		return cached
	}

	rationale := g.generate(ctx, assignment)
	g.cache.Set(key, rationale)
	return rationale
}

func (g *Generator) generate(ctx context.Context, assignment core.PersonaAssignment) string {
	if g.text != nil {
		prompt := buildPrompt(assignment)
		if out, err := g.text(ctx, prompt); err == nil && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		} else if err != nil {
			slog.WarnContext(ctx, "Text generation failed, using template",
				"persona", assignment.Persona,
				"error", err)
		}
	}
	return fallback(assignment)
}

func buildPrompt(assignment core.PersonaAssignment) string {
	return fmt.Sprintf(
		"In two sentences, explain to a user why their finances match the %q profile. Observed signals: %s. Be encouraging and concrete; do not mention internal labels.",
		assignment.Persona,
		strings.Join(assignment.Criteria, ", "),
	)
}

func fallback(assignment core.PersonaAssignment) string {
	template, ok := fallbackTemplates[assignment.Persona]
	if !ok {
		return "We spotted patterns in your accounts worth a closer look."
	}
	criteria := strings.Join(assignment.Criteria, ", ")
	return fmt.Sprintf(template, strings.ReplaceAll(criteria, "_", " "))
}

func cacheKey(assignment core.PersonaAssignment) string {
	return assignment.Signals.UserID + "|" + string(assignment.Persona)
}
