package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/platformatic/pprof-to-md/analyzer"
	"github.com/platformatic/pprof-to-md/internal/config"
	"github.com/platformatic/pprof-to-md/render"
)

// toolHandlers serves the MCP tools. cfg holds the defaults that tool
// arguments override per call.
type toolHandlers struct {
	pipeline *pipeline
	cfg      config.Config
}

func newMCPServer(h *toolHandlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pprof-to-md",
		version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	analyzeTool := mcp.NewTool("analyze_profile",
		mcp.WithDescription("Analyze a pprof profile: per-function statistics, hotspots, critical paths and the merged call tree."),
		mcp.WithString("profile_uri",
			mcp.Description("Profile location: a local path, 'file://', 'http://' or 'https://' URI."),
			mcp.Required(),
		),
		mcp.WithNumber("sample_index",
			mcp.Description("Measurement column to analyze. Omit to use the configured default."),
		),
		mcp.WithNumber("hotspot_threshold",
			mcp.Description("Minimum self share (0..1) for a function to be reported as a hotspot."),
		),
		mcp.WithNumber("max_paths",
			mcp.Description("Maximum number of critical paths."),
		),
		mcp.WithNumber("top_n",
			mcp.Description("Maximum number of hotspots to render."),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format."),
			mcp.DefaultString(render.FormatMarkdown),
			mcp.Enum(render.Formats...),
		),
	)

	sampleTypesTool := mcp.NewTool("profile_sample_types",
		mcp.WithDescription("List a profile's measurement kinds, its classified kind and the column auto-selection would pick."),
		mcp.WithString("profile_uri",
			mcp.Description("Profile location: a local path, 'file://', 'http://' or 'https://' URI."),
			mcp.Required(),
		),
	)

	flamegraphTool := mcp.NewTool("flamegraph_json",
		mcp.WithDescription("Build d3-flame-graph compatible JSON from a profile's call tree."),
		mcp.WithString("profile_uri",
			mcp.Description("Profile location: a local path, 'file://', 'http://' or 'https://' URI."),
			mcp.Required(),
		),
		mcp.WithNumber("sample_index",
			mcp.Description("Measurement column to use. Omit to use the configured default."),
		),
	)

	s.AddTool(analyzeTool, h.handleAnalyzeProfile)
	s.AddTool(sampleTypesTool, h.handleSampleTypes)
	s.AddTool(flamegraphTool, h.handleFlameGraph)
	return s
}

// callConfig applies per-call tool arguments on top of the defaults.
func (h *toolHandlers) callConfig(args map[string]any) (config.Config, error) {
	cfg := h.cfg
	if v, ok := args["sample_index"]; ok && v != nil {
		idx, err := cast.ToIntE(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid sample_index: %w", err)
		}
		cfg.Analysis.SampleIndex = &idx
	}
	if v, ok := args["hotspot_threshold"]; ok && v != nil {
		t, err := cast.ToFloat64E(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid hotspot_threshold: %w", err)
		}
		cfg.Analysis.HotspotThreshold = t
	}
	if v, ok := args["max_paths"]; ok && v != nil {
		n, err := cast.ToIntE(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid max_paths: %w", err)
		}
		cfg.Analysis.MaxPaths = n
	}
	if v, ok := args["top_n"]; ok && v != nil {
		n, err := cast.ToIntE(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid top_n: %w", err)
		}
		cfg.Render.TopN = n
	}
	if v, ok := args["output_format"]; ok && v != nil {
		cfg.Render.Format = cast.ToString(v)
	}
	return cfg, cfg.Validate()
}

func (h *toolHandlers) handleAnalyzeProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("profile_uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := h.callConfig(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.pipeline.analyze(ctx, uri, cfg)
	if err != nil {
		h.pipeline.logger.Error().Err(err).Str("profile", uri).Msg("analyze_profile failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, cfg.Render.Format, result, cfg.RenderOptions()); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *toolHandlers) handleSampleTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("profile_uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	np, err := h.pipeline.load(ctx, uri)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	kind := analyzer.ClassifyProfileKind(np.MeasurementKinds)
	selected := analyzer.SelectPrimaryIndex(np.MeasurementKinds, kind)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Profile kind: %s\n", kind))
	for i, k := range np.MeasurementKinds {
		marker := " "
		if i == selected {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s %d: %s\n", marker, i, k))
	}
	b.WriteString(fmt.Sprintf("Auto-selected sample_index: %d\n", selected))
	return mcp.NewToolResultText(b.String()), nil
}

func (h *toolHandlers) handleFlameGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("profile_uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg, err := h.callConfig(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.pipeline.analyze(ctx, uri, cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, render.FormatFlameGraphJSON, result, cfg.RenderOptions()); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
