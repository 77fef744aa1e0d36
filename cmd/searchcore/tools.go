package main

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kkarrenn/searchcore/internal/engine"
	"github.com/kkarrenn/searchcore/internal/indexer"
	"github.com/kkarrenn/searchcore/internal/query"
)

// addAllTools registers the four search.* tools against e, mirroring
// devops-mcp-server/rag/rag.go's AddTools(ctx, server) shape.
func addAllTools(ctx context.Context, server *mcp.Server, e *engine.Engine) error {
	addSearchQueryTool(server, e)
	addAutocompleteTool(server, e)
	addSimilarTool(server, e)
	addIndexDocumentTool(server, e)
	return nil
}

type searchQueryArgs struct {
	Query    string `json:"query" jsonschema:"the search query text"`
	Mode     string `json:"mode" jsonschema:"and or or, default or"`
	Semantic bool   `json:"semantic" jsonschema:"expand query terms via semantic neighbors"`
}

func addSearchQueryTool(server *mcp.Server, e *engine.Engine) {
	mcp.AddTool(server, &mcp.Tool{Name: "search.query", Description: "Searches the indexed corpus for matching documents."},
		func(ctx context.Context, req *mcp.CallToolRequest, args searchQueryArgs) (*mcp.CallToolResult, any, error) {
			mode := query.OR
			if args.Mode == "and" {
				mode = query.AND
			}
			resp := e.Search(ctx, query.Request{Query: args.Query, Mode: mode, Semantic: args.Semantic})
			return &mcp.CallToolResult{}, resp, nil
		})
}

type autocompleteArgs struct {
	Prefix string `json:"prefix" jsonschema:"the word or phrase prefix to complete"`
}

type autocompleteResult struct {
	Suggestions []engine.AutocompleteSuggestion `json:"suggestions"`
}

func addAutocompleteTool(server *mcp.Server, e *engine.Engine) {
	mcp.AddTool(server, &mcp.Tool{Name: "search.autocomplete", Description: "Suggests completions for a word or phrase prefix."},
		func(ctx context.Context, req *mcp.CallToolRequest, args autocompleteArgs) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{}, autocompleteResult{Suggestions: e.Autocomplete(args.Prefix)}, nil
		})
}

type similarArgs struct {
	Word string `json:"word" jsonschema:"the word to find semantic neighbors for"`
}

func addSimilarTool(server *mcp.Server, e *engine.Engine) {
	mcp.AddTool(server, &mcp.Tool{Name: "search.similar", Description: "Finds semantically similar words by embedding cosine similarity."},
		func(ctx context.Context, req *mcp.CallToolRequest, args similarArgs) (*mcp.CallToolResult, any, error) {
			neighbors, err := e.Similar(ctx, args.Word)
			if err != nil {
				return &mcp.CallToolResult{}, nil, err
			}
			return &mcp.CallToolResult{}, neighbors, nil
		})
}

type indexDocumentArgs struct {
	DocID    string   `json:"doc_id,omitempty" jsonschema:"optional caller-supplied document id"`
	Title    string   `json:"title,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Body     string   `json:"body" jsonschema:"the document's full text"`
	Authors  []string `json:"authors,omitempty"`
}

// titleElicitSchema is the RequestedSchema offered to the client when a
// document is submitted without a title, mirroring devops-mcp-server/main.go's
// elicitingTool use of an explicit jsonschema.Schema.
var titleElicitSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"title": {Type: "string"},
	},
}

func addIndexDocumentTool(server *mcp.Server, e *engine.Engine) {
	mcp.AddTool(server, &mcp.Tool{Name: "search.index_document", Description: "Indexes a new document into the corpus."},
		func(ctx context.Context, req *mcp.CallToolRequest, args indexDocumentArgs) (*mcp.CallToolResult, any, error) {
			if args.Title == "" && req.Session != nil {
				res, err := req.Session.Elicit(ctx, &mcp.ElicitParams{
					Message:         "no title supplied; provide one or leave blank to index untitled",
					RequestedSchema: titleElicitSchema,
				})
				if err == nil {
					if t, ok := res.Content["title"].(string); ok {
						args.Title = t
					}
				}
			}
			res, err := e.IndexDocument(indexer.Request{
				DocID:    args.DocID,
				Title:    args.Title,
				Abstract: args.Abstract,
				Body:     args.Body,
				Authors:  args.Authors,
			})
			if err != nil {
				return &mcp.CallToolResult{}, nil, err
			}
			return &mcp.CallToolResult{}, res, nil
		})
}
