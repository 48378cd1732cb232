package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gompdf/printform/internal/batch"
	"github.com/gompdf/printform/internal/form"
	"github.com/gompdf/printform/internal/measure"
	"github.com/gompdf/printform/internal/pagination"
	"github.com/gompdf/printform/internal/parser/css"
	"github.com/gompdf/printform/internal/parser/html"
	htmlrender "github.com/gompdf/printform/internal/render/html"
	"github.com/gompdf/printform/internal/render/pdf"
	"github.com/gompdf/printform/internal/res"
)

// ErrNoForms is returned for documents without print forms.
var ErrNoForms = form.ErrNoForms

// Converter is the main API for paginating print forms
type Converter struct {
	options Options
	loader  *res.Loader
}

// FormPlan is the pagination outcome of one print form.
type FormPlan struct {
	Index int
	ID    string
	Form  *form.Form
	// Stream is nil when Err is set
	Stream pagination.Stream
	Err    error

	node *html.Node
}

// Pages returns number of pages the form paginates to, 0 on failure.
func (p FormPlan) Pages() int {
	if p.Err != nil {
		return 0
	}
	return p.Stream.PageCount()
}

// FormReport summarizes one print form.
type FormReport struct {
	Index int
	ID    string
	Pages int
	Err   error
}

// Report summarizes a run over a document.
type Report struct {
	Forms []FormReport
}

// Pages returns total number of produced pages.
func (r *Report) Pages() int {
	var n int
	for _, f := range r.Forms {
		n += f.Pages
	}
	return n
}

// Failed returns number of forms which could not be paginated.
func (r *Report) Failed() int {
	var n int
	for _, f := range r.Forms {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Err combines errors of failed forms.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Forms {
		if f.Err != nil {
			err = multierr.Append(err, fmt.Errorf("print form %d: %w", f.Index, f.Err))
		}
	}
	return err
}

func newReport(plans []FormPlan) *Report {
	rpt := &Report{Forms: make([]FormReport, 0, len(plans))}
	for _, p := range plans {
		rpt.Forms = append(rpt.Forms, FormReport{Index: p.Index, ID: p.ID, Pages: p.Pages(), Err: p.Err})
	}
	return rpt
}

// New creates a new converter with default options
func New() *Converter {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new converter with the specified options
func NewWithOptions(options Options) *Converter {
	return &Converter{
		options: options,
		loader:  newLoader("", options.ResourcePaths),
	}
}

func newLoader(base string, paths []string) *res.Loader {
	l := res.NewLoader(base)
	for _, path := range paths {
		l.AddSearchPath(path)
	}
	return l
}

// log returns the configured logger. Page level details are logged at debug
// level and only pass through in debug mode.
func (c *Converter) log() *zap.Logger {
	log := c.options.Logger
	if log == nil {
		return zap.NewNop()
	}
	if !c.options.Debug && log.Core().Enabled(zapcore.DebugLevel) {
		log = log.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel))
	}
	return log
}

// Options returns options of the converter
func (c *Converter) Options() Options {
	return c.options
}

// Plan paginates every print form of the document without rendering it.
func (c *Converter) Plan(htmlContent string) ([]FormPlan, error) {
	doc, err := html.NewParser().ParseString(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return c.plan(context.Background(), doc, nil)
}

// Paginate replaces every print form of the document with its paginated
// version and writes the resulting HTML to output.
func (c *Converter) Paginate(htmlContent string, output io.Writer) (*Report, error) {
	return c.PaginateContext(context.Background(), htmlContent, output)
}

// PaginateContext is Paginate with cancellation checked between print forms.
func (c *Converter) PaginateContext(ctx context.Context, htmlContent string, output io.Writer) (*Report, error) {
	doc, err := html.NewParser().ParseString(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	renderer := htmlrender.NewRenderer(c.log())
	var previous *html.Node
	plans, err := c.plan(ctx, doc, func(p *FormPlan) error {
		out, err := renderer.Apply(p.Form, p.Stream)
		if err != nil {
			return err
		}
		if previous != nil {
			htmlrender.SeparateFrom(out)
		}
		previous = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	removeFailed(plans, c.log())

	rendered, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	if _, err := io.WriteString(output, rendered); err != nil {
		return nil, fmt.Errorf("failed to write HTML: %w", err)
	}
	return newReport(plans), nil
}

// PaginateFile paginates an HTML file and writes the result to outputPath
func (c *Converter) PaginateFile(inputPath, outputPath string) (*Report, error) {
	conv, resource, err := c.loadFile(inputPath)
	if err != nil {
		return nil, err
	}
	return conv.paginateTo(resource.GetString(), outputPath)
}

// PaginateURL paginates a remote document and writes the result to outputPath
func (c *Converter) PaginateURL(url, outputPath string) (*Report, error) {
	conv := c.withLoader(url)
	resource, err := conv.loader.LoadHTML(context.Background(), url)
	if err != nil {
		return nil, fmt.Errorf("failed to load HTML from URL: %w", err)
	}
	return conv.paginateTo(resource.GetString(), outputPath)
}

// PaginateBytes paginates HTML bytes and returns resulting HTML
func (c *Converter) PaginateBytes(htmlContent []byte) ([]byte, *Report, error) {
	var buf bytes.Buffer
	rpt, err := c.Paginate(string(htmlContent), &buf)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), rpt, nil
}

// Preview draws the page layout of every print form as PDF
func (c *Converter) Preview(htmlContent string, output io.Writer) (*Report, error) {
	plans, err := c.Plan(htmlContent)
	if err != nil {
		return nil, err
	}
	renderer, docs, opts := c.preview(plans)
	if err := renderer.Render(output, docs, opts); err != nil {
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}
	return newReport(plans), nil
}

// PreviewFile draws the page layout of an HTML file to a PDF file
func (c *Converter) PreviewFile(inputPath, outputPath string) (*Report, error) {
	conv, resource, err := c.loadFile(inputPath)
	if err != nil {
		return nil, err
	}
	plans, err := conv.Plan(resource.GetString())
	if err != nil {
		return nil, err
	}
	renderer, docs, opts := conv.preview(plans)
	if err := renderer.RenderFile(docs, outputPath, opts); err != nil {
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}
	return newReport(plans), nil
}

// preview prepares renderer and documents for successfully paginated forms.
func (c *Converter) preview(plans []FormPlan) (*pdf.Renderer, []pdf.Document, pdf.RenderOptions) {
	docs := make([]pdf.Document, 0, len(plans))
	for _, p := range plans {
		if p.Err != nil {
			continue
		}
		docs = append(docs, pdf.Document{
			Name:     p.ID,
			Config:   p.Form.Config,
			Registry: p.Form.Registry,
			Stream:   p.Stream,
			Label:    labeler(p.Form),
		})
	}

	renderer := pdf.NewRenderer(c.log())
	renderer.DebugDrawBoxes = c.options.DebugDrawBoxes
	return renderer, docs, pdf.RenderOptions{
		Title:    c.options.Title,
		Author:   c.options.Author,
		Subject:  c.options.Subject,
		Keywords: c.options.Keywords,
		Creator:  "printform",
		Producer: "printform",
	}
}

// WithOptions returns a new converter with the specified options
func (c *Converter) WithOptions(options Options) *Converter {
	return NewWithOptions(options)
}

// WithOption returns a new converter with the specified option set
func (c *Converter) WithOption(option Option) *Converter {
	newOptions := c.options
	newOptions.ResourcePaths = append([]string(nil), c.options.ResourcePaths...)
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// loadFile reads a local document, relative references inside it resolve
// against its directory.
func (c *Converter) loadFile(inputPath string) (*Converter, *res.Resource, error) {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, nil, err
	}
	conv := c.withLoader(abs)
	resource, err := conv.loader.LoadHTML(context.Background(), abs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	return conv, resource, nil
}

func (c *Converter) withLoader(base string) *Converter {
	return &Converter{options: c.options, loader: newLoader(base, c.options.ResourcePaths)}
}

func (c *Converter) paginateTo(htmlContent, outputPath string) (*Report, error) {
	var buf bytes.Buffer
	rpt, err := c.Paginate(htmlContent, &buf)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	return rpt, nil
}

// plan builds and paginates forms one after another, calling apply for every
// successfully paginated one before moving to the next.
func (c *Converter) plan(ctx context.Context, doc *html.Document, apply func(*FormPlan) error) ([]FormPlan, error) {
	nodes := form.Find(doc)
	if len(nodes) == 0 {
		return nil, ErrNoForms
	}

	m := c.options.Measurer
	if m == nil {
		sm := measure.NewStyleMeasurer(doc.Root)
		for _, sheet := range c.linkedStylesheets(ctx, doc.Root) {
			sm.Sheet.Merge(sheet)
		}
		m = sm
	}

	plans := make([]FormPlan, len(nodes))
	jobs := make([]batch.Job, len(nodes))
	for i, node := range nodes {
		plans[i] = FormPlan{Index: i, ID: node.ID(), node: node}
		jobs[i] = batch.Job{
			Name: formName(i, node),
			Run: func(ctx context.Context, log *zap.Logger) error {
				p := &plans[i]
				f, err := form.Build(node, c.options.Config, m, log)
				if err != nil {
					return err
				}
				p.Form = f
				s, err := f.Paginate(log)
				if err != nil {
					return err
				}
				p.Stream = s
				if apply != nil {
					return apply(p)
				}
				return nil
			},
		}
	}

	sum := batch.NewRunner(c.log()).Run(ctx, jobs)
	for i, r := range sum.Results {
		if r.Err != nil {
			plans[i].Err = r.Err
			plans[i].Stream = nil
		}
	}
	return plans, nil
}

// linkedStylesheets loads <link rel="stylesheet"> references so measurement
// sees the same rules a browser would.
func (c *Converter) linkedStylesheets(ctx context.Context, root *html.Node) []*css.Stylesheet {
	var sheets []*css.Stylesheet
	parser := css.NewParser()
	for _, link := range root.FindAll(html.ByTag("link")) {
		href := link.AttrVal("href")
		if href == "" || !strings.Contains(strings.ToLower(link.AttrVal("rel")), "stylesheet") {
			continue
		}
		resource, err := c.loader.LoadContext(ctx, href)
		if err != nil {
			c.log().Warn("Unable to load stylesheet", zap.String("href", href), zap.Error(err))
			continue
		}
		sheet, err := parser.ParseString(resource.GetString())
		if err != nil {
			c.log().Warn("Unable to parse stylesheet", zap.String("href", href), zap.Error(err))
			continue
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

// removeFailed drops source nodes of forms which failed, so no partial pages
// are emitted. Successful forms are already replaced by their formatted copy.
func removeFailed(plans []FormPlan, log *zap.Logger) {
	for _, p := range plans {
		if p.Err != nil && p.node.Parent != nil {
			log.Debug("Dropping failed print form", zap.Int("index", p.Index), zap.String("id", p.ID))
			p.node.Remove()
		}
	}
}

func formName(i int, node *html.Node) string {
	if id := node.ID(); id != "" {
		return fmt.Sprintf("printform[%d]#%s", i, id)
	}
	return fmt.Sprintf("printform[%d]", i)
}

func labeler(f *form.Form) func(pagination.Element) string {
	return func(e pagination.Element) string {
		if e.Kind != pagination.KindRowItem {
			return ""
		}
		text := strings.Join(strings.Fields(f.Item(e.Index).Text()), " ")
		if r := []rune(text); len(r) > 60 {
			text = string(r[:60]) + "..."
		}
		return fmt.Sprintf("%d: %s", e.Index+1, text)
	}
}
