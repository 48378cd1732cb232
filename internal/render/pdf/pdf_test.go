package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gompdf/printform/internal/config"
	"github.com/gompdf/printform/internal/pagination"
)

func sampleDocument(t *testing.T) Document {
	t.Helper()
	cfg := config.Default()
	cfg.PageHeight = 300
	cfg.PageWidth = 200
	reg := &pagination.Registry{Items: []pagination.RowItem{{Height: 120}, {Height: 120}, {Height: 120}}}
	reg.SetSection(pagination.SectionHeader, 30)
	reg.SetSection(pagination.SectionFooter, 20)

	s, err := pagination.Build(cfg, reg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return Document{Name: "sample", Config: cfg, Registry: reg, Stream: s}
}

func TestRender(t *testing.T) {
	r := NewRenderer(nil)
	r.DebugDrawBoxes = true

	var buf bytes.Buffer
	doc := sampleDocument(t)
	doc.Label = func(e pagination.Element) string {
		if e.Kind == pagination.KindRowItem {
			return "Línea"
		}
		return ""
	}
	err := r.Render(&buf, []Document{doc, sampleDocument(t)}, RenderOptions{Title: "Preview", Producer: "printform"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if !bytes.Contains(buf.Bytes(), []byte("/Count 4")) {
		t.Error("expected 4 pages in the page tree")
	}
}

func TestRenderWarnsOnOverflow(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRenderer(zap.New(core))

	doc := sampleDocument(t)
	// a hand made stream ignoring paper height
	doc.Stream = pagination.Stream{pagination.EmitRowItem(0), pagination.EmitRowItem(1), pagination.EmitRowItem(2)}
	if err := r.Render(&bytes.Buffer{}, []Document{doc}, RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	if logs.FilterMessage("Page content exceeds paper height").Len() != 1 {
		t.Error("overflowing page not reported")
	}
}

func TestRenderFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "preview.pdf")
	if err := NewRenderer(nil).RenderFile([]Document{sampleDocument(t)}, out, RenderOptions{}); err != nil {
		t.Fatalf("RenderFile() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("file is not a PDF")
	}

	if err := NewRenderer(nil).Render(&bytes.Buffer{}, []Document{{Name: "broken"}}, RenderOptions{}); err == nil {
		t.Error("document without registry must fail")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
	}{
		{"#ff8000", [3]int{255, 128, 0}},
		{"#fff", [3]int{255, 255, 255}},
		{"rgb(1, 2, 3)", [3]int{1, 2, 3}},
		{"nonsense", [3]int{0, 0, 0}},
	}
	for _, tt := range tests {
		if got := parseColor(tt.in); got != tt.want {
			t.Errorf("parseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
