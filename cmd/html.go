package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	"github.com/lukman83/scrapingbee-mcp/internal/models"
	"github.com/lukman83/scrapingbee-mcp/internal/ui"
	"github.com/spf13/cobra"
)

var htmlCmd = &cobra.Command{
	Use:   "html [url]",
	Short: "Fetch a page's HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runHTML,
}

func init() {
	htmlCmd.Flags().Bool("render-js", false, "Render the page before returning HTML")
	htmlCmd.Flags().Bool("premium-proxy", false, "Use the premium proxy pool")
	htmlCmd.Flags().Int("wait", 0, "Fixed wait in ms")
	htmlCmd.Flags().String("wait-for", "", "CSS selector to wait for")
	htmlCmd.Flags().Bool("source", false, "Return the pre-rendering page source")
	htmlCmd.Flags().String("out", "", "Write the HTML to a file instead of stdout")
	htmlCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(htmlCmd)
}

func runHTML(cmd *cobra.Command, args []string) error {
	url := args[0]
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	callArgs := map[string]interface{}{"url": url}
	addCallFlags(cmd, callArgs)
	if cmd.Flags().Changed("source") {
		v, _ := cmd.Flags().GetBool("source")
		callArgs["return_page_source"] = v
	}

	gw := newGateway(gateway.KeyAmbient)

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Fetching %s...", url))
	res := gw.GetPageHTML(context.Background(), callArgs)
	spin.Stop()

	if !res.Success {
		printResult(res, format)
		os.Exit(1)
	}

	if out != "" {
		payload, ok := res.Data.(models.HTMLPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", res.Data)
		}
		if err := os.WriteFile(out, []byte(payload.HTML), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %d characters to %s", len(payload.HTML), out)
		if payload.Truncated {
			fmt.Fprintf(os.Stdout, " (truncated from %d)", payload.OriginalLength)
		}
		fmt.Fprintln(os.Stdout)
		return nil
	}

	printResult(res, format)
	return nil
}
