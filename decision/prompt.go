package decision

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jonwraymond/toolproxy/proxy"
)

// buildPrompt flattens the live catalog into a completion prompt. Input
// schemas are included verbatim as JSON; they are opaque to this layer.
// Backends whose listing failed are omitted, so the oracle can only
// pick from tools that are actually available.
func buildPrompt(request string, catalog proxy.AggregatedCapabilities) string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		if catalog[id].Err == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("You pick the best tool for a user's request from the catalog below.\n\n")
	fmt.Fprintf(&b, "User request: %s\n\nAvailable tools:\n", request)

	for _, id := range ids {
		fmt.Fprintf(&b, "\nBackend %q:\n", id)
		for _, c := range catalog[id].Capabilities {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
			if c.InputSchema != nil {
				if schema, err := json.Marshal(c.InputSchema); err == nil {
					fmt.Fprintf(&b, "  input schema: %s\n", schema)
				}
			}
		}
	}

	b.WriteString("\nRespond with ONLY a JSON object, nothing else:\n")
	b.WriteString(`{"backend": "<backend>", "tool": "<tool>", "arguments": {}}`)
	b.WriteString("\n")
	return b.String()
}

// parseDecision extracts the decision object from the oracle's reply.
// A reply wrapped in a fenced code block is tolerated; anything that is
// not a JSON object naming a backend and a tool is invalid.
func parseDecision(reply string) (Decision, error) {
	text := strings.TrimSpace(reply)
	text = trimFence(text)

	var d Decision
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}
	if d.Backend == "" || d.Tool == "" {
		return Decision{}, fmt.Errorf("%w: reply must name a backend and a tool", ErrInvalidDecision)
	}
	if d.Arguments == nil {
		d.Arguments = map[string]any{}
	}
	return d, nil
}

// trimFence strips a surrounding Markdown code fence, with or without a
// language tag.
func trimFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.Index(text, "\n"); i >= 0 {
		// Drop the language tag line.
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
