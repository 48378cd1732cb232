package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/gompdf/printform/internal/config"
	"github.com/gompdf/printform/internal/pagination"
)

// Renderer draws page layout previews of paginated documents. Every element
// of a page becomes a labelled box, 1 px of the source maps to 1 pt.
type Renderer struct {
	// DebugDrawBoxes adds page frame and capacity guides
	DebugDrawBoxes bool
	// Colors maps element names (see Element.String kinds) to CSS hex colors
	Colors map[string]string

	log       *zap.Logger
	translate func(string) string
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// Document is one paginated print form to preview.
type Document struct {
	Name     string
	Config   config.Config
	Registry *pagination.Registry
	Stream   pagination.Stream
	// Label returns the text drawn inside an element box, nil uses Element.String
	Label func(pagination.Element) string
}

var defaultColors = map[string]string{
	"header":      "#c6dbef",
	"docinfo":     "#dadaeb",
	"rowheader":   "#9ecae1",
	"footer":      "#fdd0a2",
	"footer_logo": "#fdae6b",
	"item":        "#ffffff",
	"filler":      "#eeeeee",
	"spacer":      "#f7f7f7",
}

// NewRenderer creates a new PDF renderer
func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	colors := make(map[string]string, len(defaultColors))
	for k, v := range defaultColors {
		colors[k] = v
	}
	return &Renderer{Colors: colors, log: log}
}

// Render writes a preview of all documents to w, pages of consecutive
// documents follow each other.
func (r *Renderer) Render(w io.Writer, docs []Document, options RenderOptions) error {
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.SetFont("Helvetica", "", 8)
	r.translate = pdf.UnicodeTranslatorFromDescriptor("")

	var pages int
	for _, doc := range docs {
		if doc.Registry == nil {
			return fmt.Errorf("document %q has no registry", doc.Name)
		}
		for _, page := range doc.Stream.Pages(doc.Registry) {
			r.renderPage(pdf, doc, page)
			pages++
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("unable to render preview: %w", err)
	}
	r.log.Debug("Preview rendered", zap.Int("documents", len(docs)), zap.Int("pages", pages))
	return pdf.Output(w)
}

// RenderFile renders documents to a PDF file, creating its directory when needed
func (r *Renderer) RenderFile(docs []Document, outputPath string, options RenderOptions) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("unable to create preview file: %w", err)
	}
	if err := r.Render(f, docs, options); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *Renderer) renderPage(pdf *fpdf.Fpdf, doc Document, page pagination.Page) {
	width, height := doc.Config.PageWidth, doc.Config.PageHeight
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})

	var y float64
	for _, e := range page.Elements {
		blocks, h := 1, e.Extent(doc.Registry)
		if e.Kind == pagination.KindFiller && e.Count > 0 {
			blocks, h = e.Count, e.Height
		}
		for range blocks {
			r.renderElement(pdf, doc, e, y, width, h)
			y += h
		}
	}

	if page.Height > height {
		r.log.Warn("Page content exceeds paper height",
			zap.String("document", doc.Name),
			zap.Int("page", page.Number),
			zap.Float64("height", page.Height))
	}

	if r.DebugDrawBoxes {
		r.renderGuides(pdf, doc, width, height)
	}
}

func (r *Renderer) renderElement(pdf *fpdf.Fpdf, doc Document, e pagination.Element, y, width, h float64) {
	if h <= 0 {
		return
	}
	color := parseColor(r.colorOf(e))
	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.5)

	style := "FD"
	if e.Kind == pagination.KindSpacer {
		style = "F"
	}
	pdf.Rect(0, y, width, h, style)

	// too small to carry a readable label
	if h < 9 {
		return
	}
	label := e.String()
	if doc.Label != nil {
		if l := doc.Label(e); l != "" {
			label = l
		}
	}
	pdf.SetTextColor(60, 60, 60)
	pdf.Text(3, y+8, r.translate(label))
	pdf.Text(width-40, y+8, strconv.FormatFloat(h, 'f', -1, 64)+"px")
}

// renderGuides outlines the paper and marks where repeated footers start.
func (r *Renderer) renderGuides(pdf *fpdf.Fpdf, doc Document, width, height float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Rect(0, 0, width, height, "D")

	bottom := height
	for _, kind := range [...]pagination.SectionKind{pagination.SectionFooter, pagination.SectionFooterLogo} {
		if pagination.Repeats(doc.Config, kind) {
			bottom -= doc.Registry.Height(kind)
		}
	}
	pdf.SetDashPattern([]float64{4, 2}, 0)
	pdf.Line(0, bottom, width, bottom)
	pdf.SetDashPattern([]float64{}, 0)
}

func (r *Renderer) colorOf(e pagination.Element) string {
	key := e.Kind.String()
	if e.Kind == pagination.KindSection {
		key = e.Section.String()
	}
	if c, ok := r.Colors[key]; ok {
		return c
	}
	return "#ffffff"
}

// parseColor parses a CSS color value
func parseColor(value string) [3]int {
	if strings.HasPrefix(value, "#") {
		if r, g, b, ok := parseHexColor(value); ok {
			return [3]int{r, g, b}
		}
	}

	var r, g, b int
	if _, err := fmt.Sscanf(strings.ReplaceAll(value, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}
	}
	return [3]int{0, 0, 0}
}

func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
