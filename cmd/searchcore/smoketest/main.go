// Command smoketest is a client-side check against a running searchcore
// MCP tool server, grounded on devops-mcp-server/testclient's mark3labs/
// mcp-go usage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "searchcore MCP streamable HTTP server address")
	query     = flag.String("query", "covid vaccine", "search query text to exercise search.query with")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	mcpClient, err := client.NewStreamableHttpClient(*serverURL, nil)
	if err != nil {
		log.Fatalf("failed to create mcp-go client: %v", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		log.Fatalf("failed to start mcp-go client: %v", err)
	}
	defer mcpClient.Close()

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "searchcore-smoketest", Version: "1.0.0"}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		log.Fatalf("failed to initialize client: %v", err)
	}

	var req mcp.CallToolRequest
	req.Params.Name = "search.query"
	req.Params.Arguments = map[string]any{"query": *query, "mode": "or"}

	fmt.Printf("calling search.query with %q...\n", *query)
	resp, err := mcpClient.CallTool(ctx, req)
	if err != nil {
		log.Fatalf("tool call failed: %v", err)
	}
	if resp.IsError {
		log.Fatalf("tool returned an error: %v", resp.Content)
	}

	out, err := json.MarshalIndent(resp.Content, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal result: %v", err)
	}
	fmt.Printf("result:\n%s\n", string(out))
}
