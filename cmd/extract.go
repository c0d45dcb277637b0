package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	"github.com/lukman83/scrapingbee-mcp/internal/models"
	"github.com/lukman83/scrapingbee-mcp/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var extractCmd = &cobra.Command{
	Use:   "extract [url...]",
	Short: "Test extraction rules against one or more pages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().String("rules", "", "Extraction rules as inline JSON")
	extractCmd.Flags().String("rules-file", "", "Path to a JSON file with extraction rules")
	extractCmd.Flags().String("js-scenario", "", "JS scenario as inline JSON")
	extractCmd.Flags().Bool("render-js", false, "Render the page before extracting")
	extractCmd.Flags().Bool("premium-proxy", false, "Use the premium proxy pool")
	extractCmd.Flags().Bool("stealth-proxy", false, "Use the stealth proxy pool")
	extractCmd.Flags().String("country-code", "", "Two-letter lowercase proxy country code")
	extractCmd.Flags().Int("wait", 0, "Fixed wait in ms before extraction")
	extractCmd.Flags().String("wait-for", "", "CSS selector to wait for")
	extractCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, urls []string) error {
	rules, _ := cmd.Flags().GetString("rules")
	if path, _ := cmd.Flags().GetString("rules-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read rules file: %w", err)
		}
		rules = string(data)
	}
	if rules == "" {
		return fmt.Errorf("extraction rules are required: pass --rules or --rules-file")
	}

	format, _ := cmd.Flags().GetString("format")
	gw := newGateway(gateway.KeyAmbient)

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Testing extraction rules on %d page(s)...", len(urls)))

	results := make([]*models.ToolResult, len(urls))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.MaxConcurrent)
	for i, u := range urls {
		g.Go(func() error {
			args := map[string]interface{}{
				"url":           u,
				"extract_rules": rules,
			}
			addCallFlags(cmd, args)
			results[i] = gw.TestExtractRules(ctx, args)
			spin.Update(fmt.Sprintf("Finished %s", u))
			return nil
		})
	}
	_ = g.Wait()
	spin.Stop()

	for i, res := range results {
		if len(urls) > 1 {
			fmt.Fprintf(os.Stdout, "== %s\n", urls[i])
		}
		printResult(res, format)
	}

	for _, res := range results {
		if !res.Success {
			os.Exit(1)
		}
	}
	return nil
}

// addCallFlags copies only the flags the user actually set, so absent
// options stay absent on the wire.
func addCallFlags(cmd *cobra.Command, args map[string]interface{}) {
	if cmd.Flags().Changed("js-scenario") {
		v, _ := cmd.Flags().GetString("js-scenario")
		args["js_scenario"] = v
	}
	if cmd.Flags().Changed("render-js") {
		v, _ := cmd.Flags().GetBool("render-js")
		args["render_js"] = v
	}
	if cmd.Flags().Changed("premium-proxy") {
		v, _ := cmd.Flags().GetBool("premium-proxy")
		args["premium_proxy"] = v
	}
	if cmd.Flags().Changed("stealth-proxy") {
		v, _ := cmd.Flags().GetBool("stealth-proxy")
		args["stealth_proxy"] = v
	}
	if cmd.Flags().Changed("country-code") {
		v, _ := cmd.Flags().GetString("country-code")
		args["country_code"] = v
	}
	if cmd.Flags().Changed("wait") {
		v, _ := cmd.Flags().GetInt("wait")
		args["wait"] = v
	}
	if cmd.Flags().Changed("wait-for") {
		v, _ := cmd.Flags().GetString("wait-for")
		args["wait_for"] = v
	}
}
