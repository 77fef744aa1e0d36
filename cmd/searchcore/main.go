package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kkarrenn/searchcore/internal/config"
	"github.com/kkarrenn/searchcore/internal/engine"
)

var (
	dataDir   = flag.String("data-dir", ".", "searchcore data root (indexes/, barrels/, embeddings/)")
	httpAddr  = flag.String("http", "", "if set, serve the MCP tool server over streamable HTTP at this address instead of stdin/stdout")
	apiAddr   = flag.String("api", "", "if set, also serve the plain JSON search API at this address")
	pprofAddr = flag.String("pprof", "", "if set, host the pprof debugging server at this address")
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "ingest" {
		if err := runIngest(context.Background(), os.Args[2:]); err != nil {
			log.Fatalf("ingest failed: %v", err)
		}
		return
	}

	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Fatal(http.ListenAndServe(*pprofAddr, http.DefaultServeMux))
		}()
	}

	ctx := context.Background()
	cfg, err := config.Load(*dataDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	e, err := engine.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open engine: %v", err)
	}

	if *apiAddr != "" {
		go func() {
			log.Printf("JSON API listening at %s", *apiAddr)
			log.Fatal(http.ListenAndServe(*apiAddr, engine.NewHTTPHandler(e)))
		}()
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "searchcore"}, &mcp.ServerOptions{
		Instructions: "Search a document corpus by keyword, AND/OR mode, and semantic expansion.",
	})
	if err := addAllTools(ctx, server, e); err != nil {
		log.Fatalf("failed to add tools: %v", err)
	}

	if *httpAddr != "" {
		handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return server
		}, nil)
		log.Printf("MCP handler listening at %s", *httpAddr)
		log.Fatal(http.ListenAndServe(*httpAddr, handler))
	} else {
		t := &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr}
		if err := server.Run(ctx, t); err != nil {
			log.Printf("server failed: %v", err)
		}
	}
}
