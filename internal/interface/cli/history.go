package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/neilberkman/storycards/internal/core/db"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historySince  string
	historyBefore string
	historySource string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List exported decks",
	Long: `List saved slide decks in reverse chronological order.

Dates accept natural language as well as ISO dates.

Examples:
  storycards history
  storycards history --limit 5
  storycards history --since yesterday
  storycards history --since "last week" --source lecture.pdf
  storycards history --before 2026-01-01`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of exports to display")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only exports on or after this date")
	historyCmd.Flags().StringVar(&historyBefore, "before", "", "Only exports before this date")
	historyCmd.Flags().StringVar(&historySource, "source", "", "Filter by source document name")
}

func runHistory(cmd *cobra.Command, args []string) error {
	filter := db.ExportFilter{
		Source: historySource,
		Limit:  historyLimit,
	}

	now := time.Now()
	if historySince != "" {
		t, err := parseDate(historySince, now)
		if err != nil {
			return err
		}
		filter.After = t
	}
	if historyBefore != "" {
		t, err := parseDate(historyBefore, now)
		if err != nil {
			return err
		}
		filter.Before = t
	}

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	records, err := database.ListExports(filter)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	if len(records) == 0 {
		fmt.Printf("No exports found in %s. Export a deck with 'e' in the TUI or 'storycards generate --export'.\n", database.Path())
		return nil
	}

	fmt.Printf("Showing %d export(s)\n\n", len(records))
	for i, r := range records {
		source := r.SourceName
		if source == "" {
			source = "(unknown document)"
		}
		fmt.Printf("[%d] %s\n", i+1, source)
		fmt.Printf("    Deck: %s (%s, %d cards)\n", r.OutputPath, humanize.Bytes(uint64(r.ByteSize)), r.ParagraphCount)
		if r.Prompt != "" {
			fmt.Printf("    Prompt: %s\n", truncate(r.Prompt, 80))
		}
		fmt.Printf("    Exported: %s\n", humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
		fmt.Println()
	}

	return nil
}

// parseDate accepts common date layouts and natural language ("yesterday",
// "last week")
func parseDate(s string, now time.Time) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	if result, err := w.Parse(s, now); err == nil && result != nil {
		return result.Time, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// truncate collapses whitespace and shortens s to maxLen at a word break
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}

	truncated := s[:maxLen]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > maxLen-20 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
