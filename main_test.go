package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/platformatic/pprof-to-md/internal/config"
	"github.com/platformatic/pprof-to-md/internal/metrics"
)

func heapProfile() *profile.Profile {
	fnMain := &profile.Function{ID: 1, Name: "main.main", SystemName: "main.main", Filename: "main.go", StartLine: 3}
	fnAlloc := &profile.Function{ID: 2, Name: "main.allocate", SystemName: "main.allocate", Filename: "alloc.go", StartLine: 10}
	fnCache := &profile.Function{ID: 3, Name: "main.fillCache", SystemName: "main.fillCache", Filename: "cache.go", StartLine: 20}
	locMain := &profile.Location{ID: 1, Address: 0x100, Line: []profile.Line{{Function: fnMain, Line: 5}}}
	locAlloc := &profile.Location{ID: 2, Address: 0x200, Line: []profile.Line{{Function: fnAlloc, Line: 12}}}
	locCache := &profile.Location{ID: 3, Address: 0x300, Line: []profile.Line{{Function: fnCache, Line: 22}}}

	return &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "alloc_objects", Unit: "count"},
			{Type: "alloc_space", Unit: "bytes"},
			{Type: "inuse_objects", Unit: "count"},
			{Type: "inuse_space", Unit: "bytes"},
		},
		PeriodType: &profile.ValueType{Type: "space", Unit: "bytes"},
		Period:     524288,
		Function:   []*profile.Function{fnMain, fnAlloc, fnCache},
		Location:   []*profile.Location{locMain, locAlloc, locCache},
		Sample: []*profile.Sample{
			{Location: []*profile.Location{locAlloc, locMain}, Value: []int64{10, 4096, 2, 2048}},
			{Location: []*profile.Location{locCache, locMain}, Value: []int64{5, 2048, 5, 6144}},
		},
	}
}

func writeProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heap.pb.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, heapProfile().Write(f))
	require.NoError(t, f.Close())
	return path
}

func newTestHandlers() *toolHandlers {
	return &toolHandlers{
		pipeline: &pipeline{logger: zerolog.Nop(), metrics: metrics.New(prometheus.NewRegistry())},
		cfg:      config.Default(),
	}
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestHandleAnalyzeProfile(t *testing.T) {
	h := newTestHandlers()
	path := writeProfile(t)

	out, isErr := callTool(t, h.handleAnalyzeProfile, map[string]any{
		"profile_uri":  path,
		"sample_index": float64(3),
	})
	require.False(t, isErr, out)
	require.Contains(t, out, "# Profile Analysis")
	require.Contains(t, out, "inuse_space/bytes")
	require.Contains(t, out, "**Total:** 8.19 KB")
	require.Contains(t, out, "`main.fillCache`")

	out, isErr = callTool(t, h.handleAnalyzeProfile, map[string]any{
		"profile_uri":   "file://" + path,
		"output_format": "json",
	})
	require.False(t, isErr, out)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "alloc_objects", decoded["measurementKind"].(map[string]any)["name"])
}

func TestHandleAnalyzeProfileErrors(t *testing.T) {
	h := newTestHandlers()
	path := writeProfile(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing uri", args: map[string]any{}, want: "profile_uri"},
		{name: "bad column", args: map[string]any{"profile_uri": path, "sample_index": 9}, want: "invalid column index"},
		{name: "bad format", args: map[string]any{"profile_uri": path, "output_format": "svg"}, want: "render.format"},
		{name: "bad threshold", args: map[string]any{"profile_uri": path, "hotspot_threshold": "lots"}, want: "invalid hotspot_threshold"},
		{name: "missing file", args: map[string]any{"profile_uri": filepath.Join(t.TempDir(), "nope.pb.gz")}, want: "failed to open profile file"},
		{name: "bad scheme", args: map[string]any{"profile_uri": "ftp://example.com/cpu.pb.gz"}, want: "unsupported URI scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, isErr := callTool(t, h.handleAnalyzeProfile, tt.args)
			require.True(t, isErr)
			require.Contains(t, out, tt.want)
		})
	}
}

func TestHandleSampleTypes(t *testing.T) {
	out, isErr := callTool(t, newTestHandlers().handleSampleTypes, map[string]any{"profile_uri": writeProfile(t)})
	require.False(t, isErr, out)
	require.Contains(t, out, "Profile kind: heap")
	require.Contains(t, out, "* 3: inuse_space/bytes")
	require.Contains(t, out, "  0: alloc_objects/count")
	require.Contains(t, out, "Auto-selected sample_index: 3")
}

func TestHandleFlameGraph(t *testing.T) {
	out, isErr := callTool(t, newTestHandlers().handleFlameGraph, map[string]any{
		"profile_uri":  writeProfile(t),
		"sample_index": 1,
	})
	require.False(t, isErr, out)

	var fg struct {
		Name     string `json:"name"`
		Value    int64  `json:"value"`
		Children []struct {
			Name  string `json:"name"`
			Value int64  `json:"value"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &fg))
	require.Equal(t, "root", fg.Name)
	require.Equal(t, int64(6144), fg.Value)
	require.Len(t, fg.Children, 1)
	require.Equal(t, "main.main", fg.Children[0].Name)
}

func TestGetProfileAsFileHTTP(t *testing.T) {
	var body bytes.Buffer
	require.NoError(t, heapProfile().Write(&body))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/heap" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body.Bytes())
	}))
	defer srv.Close()

	path, cleanup, err := getProfileAsFile(context.Background(), zerolog.Nop(), srv.URL+"/heap")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body.Bytes(), data)
	cleanup()
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	_, _, err = getProfileAsFile(context.Background(), zerolog.Nop(), srv.URL+"/missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status code 404")
}

func TestRootCommand(t *testing.T) {
	path := writeProfile(t)

	t.Run("markdown", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		cmd := newRootCmd(&cli{})
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs([]string{"--auto-select", "--top", "1", path})
		require.NoError(t, cmd.Execute())
		require.Contains(t, stdout.String(), "inuse_space/bytes")
		require.Contains(t, stdout.String(), "| 1 |")
		require.NotContains(t, stdout.String(), "| 2 |")
		require.Contains(t, stderr.String(), "analysis finished")
	})

	t.Run("output file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "report.txt")
		cmd := newRootCmd(&cli{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--format", "text", "-o", out, path})
		require.NoError(t, cmd.Execute())
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Contains(t, string(data), "=== Hotspots ===")
	})

	t.Run("config file", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("analysis:\n  sample_index: 1\nrender:\n  format: json\n"), 0o600))
		var stdout bytes.Buffer
		cmd := newRootCmd(&cli{})
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", cfgPath, path})
		require.NoError(t, cmd.Execute())
		require.Contains(t, stdout.String(), `"name": "alloc_space"`)
	})

	t.Run("invalid flag value", func(t *testing.T) {
		cmd := newRootCmd(&cli{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--threshold", "2", path})
		err := cmd.Execute()
		require.Error(t, err)
		require.Contains(t, err.Error(), "hotspot_threshold")
	})

	t.Run("version", func(t *testing.T) {
		var stdout bytes.Buffer
		cmd := newRootCmd(&cli{})
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"version"})
		require.NoError(t, cmd.Execute())
		require.Equal(t, version+"\n", stdout.String())
	})
}
