// Package critique generates critical-thinking commentary on thoughts.
//
// The gateway is deliberately best-effort: critique enriches a thought
// but is never required for one to be processed. Every failure mode -
// missing credential, network error, timeout, malformed response - is
// absorbed here and degrades to "no critique". Nothing escapes this
// boundary.
package critique

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/richinex/seqthink/llm"
)

// DefaultTimeout bounds how long a single critique call may take
// before it is abandoned and treated as absent.
const DefaultTimeout = 15 * time.Second

const systemPrompt = `You are a critical thinking assistant. Your role is to provide an objective,
constructive critique of the thought process. Consider:
- Potential logical fallacies or cognitive biases
- Unexamined assumptions
- Alternative perspectives
- Missing context or information
- Potential improvements or refinements

Be concise, specific, and constructive in your response.`

// Context carries the structured context for a critique call. The
// recognized keys are explicit fields; Extra is a deliberately open
// string map for forward-compatible passthrough. Nothing in the core
// analyzer depends on Extra's contents.
type Context struct {
	Number                int
	TotalExpected         int
	Stage                 string
	Tags                  []string
	Axioms                []string
	AssumptionsChallenged []string
	Extra                 map[string]string
}

// Thinker produces critiques through an LLM provider.
// A nil provider is valid and yields no critiques.
type Thinker struct {
	provider llm.Provider
	timeout  time.Duration
}

// NewThinker creates a critique gateway over the given provider.
// A zero or negative timeout falls back to DefaultTimeout.
func NewThinker(provider llm.Provider, timeout time.Duration) *Thinker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Thinker{provider: provider, timeout: timeout}
}

// Enabled reports whether the gateway has a provider to call.
func (t *Thinker) Enabled() bool {
	return t != nil && t.provider != nil
}

// Generate returns a critique of the thought, or "" when unavailable.
// The call is bounded by the configured timeout; an expired deadline is
// treated the same as any other failure.
func (t *Thinker) Generate(ctx context.Context, thought string, tc Context) string {
	if !t.Enabled() {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	response, err := t.provider.Chat(callCtx, []llm.ChatMessage{
		llm.SystemMessage(systemPrompt),
		llm.UserMessage(userPrompt(thought, tc)),
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(response.Content)
}

func userPrompt(thought string, tc Context) string {
	var b strings.Builder
	b.WriteString("Analyze the following thought and provide constructive criticism:\n\n")
	b.WriteString(thought)
	b.WriteString("\n\nContext:\n")
	fmt.Fprintf(&b, "- Thought %d of %d, stage: %s\n", tc.Number, tc.TotalExpected, tc.Stage)
	if len(tc.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(tc.Tags, ", "))
	}
	if len(tc.Axioms) > 0 {
		fmt.Fprintf(&b, "- Axioms used: %s\n", strings.Join(tc.Axioms, "; "))
	}
	if len(tc.AssumptionsChallenged) > 0 {
		fmt.Fprintf(&b, "- Assumptions challenged: %s\n", strings.Join(tc.AssumptionsChallenged, "; "))
	}
	// Sorted so identical inputs always produce the same prompt.
	keys := make([]string, 0, len(tc.Extra))
	for key := range tc.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", key, tc.Extra[key])
	}
	return b.String()
}
