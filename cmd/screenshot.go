package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	"github.com/lukman83/scrapingbee-mcp/internal/ui"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot [url]",
	Short: "Capture a screenshot of a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runScreenshot,
}

func init() {
	screenshotCmd.Flags().Bool("full-page", false, "Capture the full page height")
	screenshotCmd.Flags().Int("width", 0, "Viewport width in px")
	screenshotCmd.Flags().Int("height", 0, "Viewport height in px")
	screenshotCmd.Flags().Bool("premium-proxy", false, "Use the premium proxy pool")
	screenshotCmd.Flags().Int("wait", 0, "Fixed wait in ms")
	screenshotCmd.Flags().String("wait-for", "", "CSS selector to wait for")
	screenshotCmd.Flags().String("out", "screenshot.png", "Output file")
	screenshotCmd.Flags().String("format", "json", "Failure output format: json, table")
	rootCmd.AddCommand(screenshotCmd)
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	url := args[0]
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")

	callArgs := map[string]interface{}{"url": url}
	addCallFlags(cmd, callArgs)
	if cmd.Flags().Changed("full-page") {
		v, _ := cmd.Flags().GetBool("full-page")
		callArgs["screenshot_full_page"] = v
	}
	if cmd.Flags().Changed("width") {
		v, _ := cmd.Flags().GetInt("width")
		callArgs["window_width"] = v
	}
	if cmd.Flags().Changed("height") {
		v, _ := cmd.Flags().GetInt("height")
		callArgs["window_height"] = v
	}

	gw := newGateway(gateway.KeyAmbient)

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Capturing %s...", url))
	raw, failure := gw.Screenshot(context.Background(), callArgs)
	spin.Stop()

	if failure != nil {
		printResult(failure, format)
		os.Exit(1)
	}

	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d bytes to %s\n", len(raw), out)
	return nil
}
