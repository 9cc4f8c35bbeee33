// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conclusion assembles the analyst's answer text from the current
// finding and related findings retrieved from memory.
package conclusion

import (
	"fmt"
	"strings"

	"github.com/pdiddy/agent-memory/pkg/types"
)

const (
	ruleWidth = 60

	// maxRelated is the number of related items shown after the self-match.
	maxRelated = 3

	// excerptLength is the number of characters of related findings shown.
	excerptLength = 300

	ellipsis = "..."

	// SummaryWithMemory closes an answer that includes related memory.
	SummaryWithMemory = "✅ This answer combines current research with relevant past knowledge."

	// SummaryFresh closes an answer built from current research only.
	SummaryFresh = "✅ This is fresh research stored for future reference."

	// RelatedHeading introduces the related memory section.
	RelatedHeading = "💭 Related Information from Memory:"

	// CurrentHeading introduces the current finding.
	CurrentHeading = "🔍 Current Research:"
)

// Build returns the conclusion for query. related is the ranked retrieval
// output for this query; its first entry is the self-match and is never
// shown. The related section is rendered only when related holds more than
// the self-match, listing at most three further entries.
func Build(query, currentFinding string, related []types.RetrievalResult) string {
	withMemory := len(related) > 1
	var parts []string

	parts = append(parts, fmt.Sprintf("📊 Research Results for: '%s'\n", query))
	parts = append(parts, strings.Repeat("=", ruleWidth))

	parts = append(parts, "\n"+CurrentHeading)
	parts = append(parts, currentFinding)

	if withMemory {
		parts = append(parts, "\n\n"+RelatedHeading)
		parts = append(parts, strings.Repeat("-", ruleWidth))

		// related[0] is skipped as the self-match. Equal scores rank oldest
		// first, so after a repeated query it is the earlier record and the
		// one just written is listed below.
		end := min(len(related), maxRelated+1)
		for i, r := range related[1:end] {
			parts = append(parts, fmt.Sprintf("\n%d. Related to: '%s' (similarity: %s)",
				i+1, r.Item.Query, Percent(r.Score)))
			parts = append(parts, "   "+Excerpt(r.Item.Findings, excerptLength)+ellipsis)
		}
	}

	parts = append(parts, "\n\n"+strings.Repeat("=", ruleWidth))
	if withMemory {
		parts = append(parts, SummaryWithMemory)
	} else {
		parts = append(parts, SummaryFresh)
	}

	return strings.Join(parts, "\n")
}

// Percent formats a similarity score as a percentage with two decimals
// (0.8765 -> "87.65%").
func Percent(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}

// Excerpt returns the first n characters of s. Characters are counted as
// runes so multi-byte text is never split.
func Excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
