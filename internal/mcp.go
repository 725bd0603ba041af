package internal

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and the pipeline behind its tools
type MCPServer struct {
	pipeline  *Pipeline
	feeds     *FeedResolver
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(pipeline *Pipeline, feeds *FeedResolver, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"podscribe-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		pipeline:  pipeline,
		feeds:     feeds,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("transcribe_podcast",
		mcp.WithDescription("Download a podcast episode and transcribe it with OpenAI Whisper (PAID). Writes a markdown transcript and returns it. Requires OPENAI_API_KEY. Always ask the user for confirmation before calling this tool."),
		mcp.WithString("audio_url",
			mcp.Description("Direct URL of the audio file (mp3, wav, m4a, ogg, flac, aac)"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("Title of the episode, used for the heading and the file name"),
			mcp.Required(),
		),
		mcp.WithString("commentary",
			mcp.Description("Optional notes placed above the transcript"),
		),
	), s.handleTranscribe)

	s.mcpServer.AddTool(mcp.NewTool("clean_transcript",
		mcp.WithDescription("Rewrite a transcript file for readability using GitHub Models. Writes a cleaned sibling file and returns it. Falls back to the original text when every endpoint fails."),
		mcp.WithString("path",
			mcp.Description("Path of a transcript file written by transcribe_podcast"),
			mcp.Required(),
		),
	), s.handleClean)

	s.mcpServer.AddTool(mcp.NewTool("list_feed_episodes",
		mcp.WithDescription("List the audio episodes of a podcast RSS/Atom feed, newest first, with the audio URL to pass to transcribe_podcast (FREE)."),
		mcp.WithString("feed_url",
			mcp.Description("URL of the podcast feed"),
			mcp.Required(),
		),
	), s.handleListEpisodes)
}

func (s *MCPServer) handleTranscribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	audioURL, err := request.RequireString("audio_url")
	if err != nil {
		return mcp.NewToolResultError("audio_url parameter is required and must be a string"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title parameter is required and must be a string"), nil
	}

	req := TranscriptionRequest{
		Title:      title,
		AudioURL:   audioURL,
		Commentary: request.GetString("commentary", ""),
	}

	result, err := s.pipeline.Run(ctx, req)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to transcribe podcast", err), nil
	}

	return textFileResult(result.Path, result.Warnings)
}

func (s *MCPServer) handleClean(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	result, err := s.pipeline.Clean(ctx, path)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to clean transcript", err), nil
	}

	var warnings []string
	if !result.Rewritten {
		warnings = append(warnings, "rewriting failed, the cleaned file holds the original transcript")
	}
	return textFileResult(result.Path, warnings)
}

func (s *MCPServer) handleListEpisodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feedURL, err := request.RequireString("feed_url")
	if err != nil {
		return mcp.NewToolResultError("feed_url parameter is required and must be a string"), nil
	}

	episodes, err := s.feeds.Episodes(ctx, feedURL)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to read feed", err), nil
	}

	return mcp.NewToolResultText(FormatEpisodes(episodes)), nil
}

func textFileResult(path string, warnings []string) (*mcp.CallToolResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to read "+path, err), nil
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "File: %s\n", path)
	for _, w := range warnings {
		fmt.Fprintf(&buf, "Warning: %s\n", w)
	}
	buf.WriteString("\n")
	buf.Write(content)

	return mcp.NewToolResultText(buf.String()), nil
}

// FormatEpisodes lists episodes as numbered plain text
func FormatEpisodes(episodes []Episode) string {
	var buf strings.Builder
	for i, e := range episodes {
		fmt.Fprintf(&buf, "%d. %s\n", i, e.Title)
		if e.Published != nil {
			fmt.Fprintf(&buf, "   Published: %s\n", e.Published.Format("2006-01-02"))
		}
		fmt.Fprintf(&buf, "   Audio: %s\n", e.AudioURL)
	}
	return buf.String()
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}
