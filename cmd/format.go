package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lukman83/scrapingbee-mcp/internal/models"
)

// printResult renders a tool result as indented JSON or a human-friendly
// card layout.
func printResult(res *models.ToolResult, format string) {
	switch format {
	case "table":
		printResultTable(res)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(res)
	}
}

func printResultTable(res *models.ToolResult) {
	if res.Success {
		fmt.Fprintln(os.Stdout, " OK")
		if res.Message != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", res.Message)
		}
		if res.Meta != nil {
			if res.Meta.CostCredits != "" {
				fmt.Fprintf(os.Stdout, "    Cost: %s credits\n", res.Meta.CostCredits)
			}
			if res.Meta.ResolvedURL != "" {
				fmt.Fprintf(os.Stdout, "    Resolved: %s\n", res.Meta.ResolvedURL)
			}
		}
		if res.Data != nil {
			data, _ := json.MarshalIndent(res.Data, "    ", "  ")
			fmt.Fprintf(os.Stdout, "    %s\n", data)
		}
		return
	}

	d := res.Error
	if d == nil {
		fmt.Fprintln(os.Stdout, " FAILED")
		return
	}

	fmt.Fprintf(os.Stdout, " FAILED [%s]", d.Kind)
	if d.Status > 0 {
		fmt.Fprintf(os.Stdout, " %d %s", d.Status, d.StatusText)
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprintf(os.Stdout, "    %s\n", d.Message)

	if len(d.PossibleCauses) > 0 {
		fmt.Fprintln(os.Stdout, "    Possible causes:")
		for _, c := range d.PossibleCauses {
			fmt.Fprintf(os.Stdout, "      - %s\n", c)
		}
	}
	if len(d.Suggestions) > 0 {
		fmt.Fprintln(os.Stdout, "    Suggestions:")
		for _, s := range d.Suggestions {
			fmt.Fprintf(os.Stdout, "      - %s\n", s)
		}
	}
	if d.Body != "" {
		fmt.Fprintf(os.Stdout, "    Body: %s\n", truncate(d.Body, 200))
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
