package presentation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/anpconf/internal/cut"
	"github.com/zjrosen/anpconf/internal/history"
	"github.com/zjrosen/anpconf/internal/registry"
)

func sampleRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	reg.SetVal("AlgType", "RunAlgs")
	require.NoError(t, reg.SetValueLong("NEvent", "100"))
	hist := registry.New()
	hist.SetVal("ReadFile", "hist.root")
	reg.SetRegistry("HistMan", hist)
	return reg
}

func TestRenderTree_Plain(t *testing.T) {
	got := RenderTree("RunModule", sampleRegistry(t), TreeOptions{Plain: true})
	want := "RunModule\n" +
		"├── AlgType = RunAlgs\n" +
		"├── NEvent = 100\n" +
		"└── HistMan\n" +
		"    └── ReadFile = hist.root\n"
	require.Equal(t, want, got)
}

func TestRenderTree_NestedMiddleBranch(t *testing.T) {
	reg := registry.New()
	inner := registry.New()
	inner.SetVal("A", "1")
	reg.SetRegistry("Sub", inner)
	reg.SetVal("Last", "x")

	got := RenderTree("", reg, TreeOptions{Plain: true})
	require.Equal(t, "├── Sub\n│   └── A = 1\n└── Last = x\n", got)
}

func TestRenderTree_Empty(t *testing.T) {
	require.Equal(t, "top\n", RenderTree("top", nil, TreeOptions{Plain: true}))
	require.Empty(t, RenderTree("", registry.New(), TreeOptions{Plain: true}))
}

func TestRenderTree_WrapsLongValues(t *testing.T) {
	value := strings.TrimSuffix(strings.Repeat("muon,", 20), ",")
	reg := registry.New()
	reg.SetVal("Cuts", value)

	got := RenderTree("", reg, TreeOptions{Width: 30, Plain: true})
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Greater(t, len(lines), 2)
	require.True(t, strings.HasPrefix(lines[0], "└── Cuts = "))

	var joined strings.Builder
	joined.WriteString(strings.TrimPrefix(lines[0], "└── Cuts = "))
	for _, l := range lines[1:] {
		require.True(t, strings.HasPrefix(l, strings.Repeat(" ", 11)), "continuation aligned under value: %q", l)
		joined.WriteString(strings.TrimSpace(l))
	}
	require.Equal(t, value, joined.String())
}

func TestRenderTree_NoWrapWhenWidthZero(t *testing.T) {
	value := strings.Repeat("x ", 100)
	reg := registry.New()
	reg.SetVal("K", value)
	got := RenderTree("", reg, TreeOptions{Plain: true})
	require.Equal(t, "└── K = "+value+"\n", got)
}

func TestDiffText(t *testing.T) {
	lines := DiffText("A: 1\nB: 2\n", "A: 1\nB: 3\nC: 4\n")
	require.Equal(t, []DiffLine{
		{Op: DiffEqual, Text: "A: 1"},
		{Op: DiffDelete, Text: "B: 2"},
		{Op: DiffInsert, Text: "B: 3"},
		{Op: DiffInsert, Text: "C: 4"},
	}, lines)
	require.True(t, HasChanges(lines))

	require.Equal(t, "  A: 1\n- B: 2\n+ B: 3\n+ C: 4\n", RenderDiff(lines, true))
}

func TestDiffRegistries(t *testing.T) {
	a := sampleRegistry(t)
	b := a.Clone()
	require.False(t, HasChanges(DiffRegistries(a, b)))

	hist, ok := b.GetRegistry("HistMan")
	require.True(t, ok)
	hist.SetVal("ReadFile", "other.root")
	b.SetRegistry("HistMan", hist)

	lines := DiffRegistries(a, b)
	require.True(t, HasChanges(lines))
	out := RenderDiff(lines, true)
	require.Contains(t, out, "-    ReadFile: hist.root")
	require.Contains(t, out, "+    ReadFile: other.root")

	require.True(t, HasChanges(DiffRegistries(nil, a)))
}

func TestMarkdown_RenderCuts(t *testing.T) {
	md, err := NewMarkdown(80, "notty")
	require.NoError(t, err)
	require.Equal(t, 80, md.Width())

	cuts := []*cut.Item{
		cut.MustNew("MuonPt", "[Pt] > 25"),
		cut.MustNew("MuonEta", "fabs([Eta]) < 2.5"),
	}
	out, err := md.RenderCuts("Muon cuts", cuts)
	require.NoError(t, err)
	require.Contains(t, out, "Muon cuts")
	require.Contains(t, out, "MuonPt")
	require.Contains(t, out, "MuonEta")
}

func TestFromEntry(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := history.Entry{ID: "abc", Job: "muons.yaml", Kind: "module", TopAlg: "RunAlgs", Format: "xml", Config: "<Registry/>", CreatedAt: created}

	dto := FromEntry(e, false)
	require.Empty(t, dto.Config)
	require.NotNil(t, dto.Files, "files always present")
	require.Equal(t, "<Registry/>", FromEntry(e, true).Config)

	dtos := FromEntries([]history.Entry{e, e})
	require.Len(t, dtos, 2)
}

func TestFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, true)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.FormatBuilds([]BuildDTO{{ID: "abc", Job: "muons.yaml", Files: []string{}, CreatedAt: created}}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "abc", decoded[0]["id"])
	require.Equal(t, []any{}, decoded[0]["files"])
	require.NotContains(t, decoded[0], "config")
	require.Equal(t, "2024-03-01T12:00:00Z", decoded[0]["created_at"])

	buf.Reset()
	require.NoError(t, f.FormatBuild(BuildDTO{ID: "x", Config: "c"}))
	require.Contains(t, buf.String(), `"config": "c"`)
}

func TestFormatter_BuildTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, true)
	require.NoError(t, f.BuildTable([]BuildDTO{
		{ID: "3f2a9c10-0000-4000-8000-000000000001", Kind: "module", TopAlg: "RunAlgs", Files: []string{"a", "b"}, Job: "muons.yaml"},
		{ID: "short", Kind: "ntuple", TopAlg: "readAlgs", Job: "ntuple.yaml"},
	}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "ID        CREATED"))
	require.True(t, strings.HasPrefix(lines[1], "3f2a9c10  "))
	require.True(t, strings.HasSuffix(lines[1], "2      muons.yaml"))
	require.True(t, strings.HasPrefix(lines[2], "short     "))
	require.True(t, strings.HasSuffix(lines[2], "0      ntuple.yaml"))
}
