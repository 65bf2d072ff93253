package services

import (
	"fmt"
	"sort"
	"strings"

	"staysearch/models"
)

// PrintRankedReport formats and prints a single-backend ranked list to the
// terminal.
func PrintRankedReport(backend string, result *models.PostProcessResult) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("ACCOMMODATION SEARCH RESULTS", 55))
	fmt.Printf("╚%s╝\n", border)

	ctx := result.Context
	fmt.Printf("\n %s | %s → %s | backend: %s\n%s\n",
		ctx.Location, ctx.CheckIn, ctx.CheckOut, backend, thin)

	if len(result.Listings) == 0 {
		fmt.Println("  No listings found.")
	}
	for i, l := range result.Listings {
		fmt.Printf("  %2d. %-38s %s\n", i+1, truncate(l.Title, 38), priceLabel(l))
		if l.Rating != nil {
			line := fmt.Sprintf("★ %.2f", *l.Rating)
			if l.ReviewCount != nil {
				line += fmt.Sprintf(" (%d reviews)", *l.ReviewCount)
			}
			fmt.Printf("      %s\n", line)
		}
		if l.ReviewSummary != "" {
			fmt.Printf("      %s\n", truncate(l.ReviewSummary, 70))
		}
	}

	printNotes(result.Notes, thin)
	fmt.Printf("\n%s\n\n", border)
}

// PrintComparisonReport formats and prints a dual-mode comparison: both
// ranked lists side by side with metrics and the winner.
func PrintComparisonReport(ranked map[string]*models.PostProcessResult, eval *models.EvalResult) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("BACKEND COMPARISON", 55))
	fmt.Printf("╚%s╝\n", border)

	names := make([]string, 0, len(eval.Comparison.Metrics))
	for name := range eval.Comparison.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\n METRICS\n%s\n", thin)
	fmt.Printf("  %-12s %12s %10s %7s %10s\n", "backend", "completeness", "accuracy", "speed", "composite")
	for _, name := range names {
		m := eval.Comparison.Metrics[name]
		fmt.Printf("  %-12s %12d %10d %7d %10.1f\n",
			name, m.Completeness, m.Accuracy, m.Speed, m.Composite())
	}

	fmt.Printf("\n WINNER: %s\n", strings.ToUpper(eval.Comparison.Winner))

	for _, name := range names {
		r, ok := ranked[name]
		if !ok {
			continue
		}
		fmt.Printf("\n TOP PICKS — %s\n%s\n", name, thin)
		if len(r.Listings) == 0 {
			fmt.Println("  No listings found.")
		}
		for i, l := range r.Listings {
			if i >= 5 {
				break
			}
			fmt.Printf("  %2d. %-38s %s\n", i+1, truncate(l.Title, 38), priceLabel(l))
		}
		printNotes(r.Notes, thin)
	}

	if errs := collectErrors(eval); len(errs) > 0 {
		fmt.Printf("\n RECORDED ERRORS\n%s\n", thin)
		for _, e := range errs {
			fmt.Printf("  - %s\n", truncate(e, 70))
		}
	}

	fmt.Printf("\n%s\n\n", border)
}

func collectErrors(eval *models.EvalResult) []string {
	names := make([]string, 0, len(eval.Results))
	for name := range eval.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		for _, e := range eval.Results[name].Errors {
			out = append(out, fmt.Sprintf("[%s] %s", name, e))
		}
	}
	return out
}

func printNotes(notes []string, thin string) {
	if len(notes) == 0 {
		return
	}
	fmt.Printf("\n NOTES\n%s\n", thin)
	for _, n := range notes {
		fmt.Printf("  • %s\n", n)
	}
}

func priceLabel(l *models.Listing) string {
	if !l.Valid() {
		return "price n/a"
	}
	return fmt.Sprintf("$%.0f/night", l.PricePerNight)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
