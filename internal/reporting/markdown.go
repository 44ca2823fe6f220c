package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Mining Intelligence Brief\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if !r.WindowStart.IsZero() {
		sb.WriteString(fmt.Sprintf("Window: %s — %s\n\n",
			r.WindowStart.Format(time.RFC3339), r.WindowEnd.Format(time.RFC3339)))
	}
	if r.Incomplete {
		sb.WriteString("**Batch incomplete**: the global timeout cut fetching short; results below are partial.\n\n")
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Events | %d |\n", r.Summary.TotalEvents))
	sb.WriteString(fmt.Sprintf("| Critical | %d |\n", r.Summary.CriticalEvents))
	sb.WriteString(fmt.Sprintf("| High | %d |\n", r.Summary.HighEvents))
	sb.WriteString(fmt.Sprintf("| Correlated | %d |\n", r.Summary.CorrelatedCount))
	sb.WriteString(fmt.Sprintf("| Strong Correlations | %d |\n", r.Summary.StrongCount))
	sb.WriteString("\n")

	// Top events
	sb.WriteString("## Top Events\n\n")
	if len(r.TopEvents) > 0 {
		sb.WriteString("| ID | Headline | Source | Published | Priority | Type | Impact | Sentiment | Market Impact | Strength |\n")
		sb.WriteString("|----|----------|--------|-----------|----------|------|--------|-----------|---------------|----------|\n")
		for _, row := range r.TopEvents {
			strength := "-"
			marketImpact := "-"
			if row.Strength != "" {
				strength = string(row.Strength)
				marketImpact = fmt.Sprintf("%.1f", row.OverallImpact)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.0f | %s | %s | %s | %s | %s |\n",
				row.ShortID, truncate(row.Headline, 80), row.SourceID,
				row.PublishedAt.Format("2006-01-02 15:04"),
				row.PriorityScore, row.EventType, row.ImpactLevel, row.Sentiment,
				marketImpact, strength))
		}
		sb.WriteString("\n")

		for _, row := range r.TopEvents {
			if row.PrimaryImpact != "" {
				sb.WriteString(fmt.Sprintf("- **%s**: %s\n", row.ShortID, row.PrimaryImpact))
			} else if row.Narrative != "" {
				sb.WriteString(fmt.Sprintf("- **%s**: %s\n", row.ShortID, row.Narrative))
			}
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No events in window.\n\n")
	}

	// Commodity rollups
	sb.WriteString("## Commodity Exposure\n\n")
	if len(r.Rollups) > 0 {
		sb.WriteString("| Commodity | Events | Total Impact | Avg Impact | Max Impact |\n")
		sb.WriteString("|-----------|--------|--------------|------------|------------|\n")
		for _, roll := range r.Rollups {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.1f | %.1f | %.1f |\n",
				roll.Commodity, roll.EventCount, roll.TotalImpact, roll.AvgImpact, roll.MaxImpact))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No commodity exposure detected.\n\n")
	}

	// Source failures
	if len(r.SourceFailures) > 0 {
		sb.WriteString("## Source Failures\n\n")
		for _, f := range r.SourceFailures {
			sb.WriteString(fmt.Sprintf("- %s (%d attempts): %s\n", f.SourceID, f.Attempts, f.Reason))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
