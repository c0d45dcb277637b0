package main

import "github.com/lukman83/scrapingbee-mcp/cmd"

func main() {
	cmd.Execute()
}
