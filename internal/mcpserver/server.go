// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido publishing tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mf2"
	"github.com/starford/raido/internal/micropub"
	"github.com/starford/raido/internal/posttype"
)

const (
	formatURI   = "raido://mf2-format"
	searchLimit = 20
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *micropub.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *micropub.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("publish_entry",
		mcp.WithDescription("Publish a post from a microformats-2 JSON document. "+
			"The post type, template and body are derived from the document. "+
			"Read the format contract first via get_format_contract or the "+formatURI+" resource."),
		mcp.WithString("entry", mcp.Required(), mcp.Description(`mf2 JSON, e.g. {"type":["h-entry"],"properties":{"content":["hello"]}}`)),
	), s.publishEntry)

	s.mcp.AddTool(mcp.NewTool("classify_entry",
		mcp.WithDescription("Classify and render an mf2 JSON document without storing it. "+
			"Returns the post type, the rule that matched, the template and the rendered body."),
		mcp.WithString("entry", mcp.Required(), mcp.Description("mf2 JSON document")),
	), s.classifyEntry)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a stored post with its frontmatter fields and rendered body."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Post path, e.g. posts/2026/10/hello-world(.md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts, newest first, optionally filtered by post type or category."),
		mcp.WithString("type", mcp.Description("Post type filter: note, article, reply, rsvp, like, repost, bookmark, photo, video")),
		mcp.WithString("tag", mcp.Description("Category filter")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of posts (default 50)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles, text and categories."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_responses",
		mcp.WithDescription("Find posts that reply to, like, repost or bookmark a URL."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute URL of the post responded to")),
	), s.getResponses)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the accepted mf2 document contract. "+
			"Call this before publishing to ensure the document is classified as intended."),
	), s.getFormatContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "mf2 Document Contract",
			mcp.WithResourceDescription("Accepted microformats-2 document shapes and how they map to post types."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func parseEntry(req mcp.CallToolRequest) (*mf2.Document, error) {
	raw, err := req.RequireString("entry")
	if err != nil {
		return nil, err
	}
	doc, err := mf2.Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid mf2 document: %w", err)
	}
	return doc, nil
}

func (s *Server) publishEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := parseEntry(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.Publish(ctx, doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"path":      post.Path,
		"location":  s.svc.Location(post.Path),
		"post_type": post.Type,
		"template":  post.Template,
		"status":    post.Status,
	})
}

func (s *Server) classifyEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := parseEntry(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	preview, err := s.svc.Preview(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(preview)
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.GetPost(ctx, path)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(post)
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := index.ListFilter{
		Tag:   req.GetString("tag", ""),
		Limit: req.GetInt("limit", 0),
	}
	if raw := req.GetString("type", ""); raw != "" {
		t, err := posttype.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Type = t
	}
	rows, total, err := s.svc.ListPosts(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"posts": rows, "total": total})
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getResponses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.svc.Responses(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no responses found"), nil
	}
	return jsonResult(rows)
}

func (s *Server) getFormatContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
