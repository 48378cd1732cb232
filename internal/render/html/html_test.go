package html

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/gompdf/printform/internal/config"
	"github.com/gompdf/printform/internal/form"
	"github.com/gompdf/printform/internal/pagination"
	dom "github.com/gompdf/printform/internal/parser/html"
)

const source = `<html><body>
<div class="printform" data-papersize-height="200" data-papersize-width="600" data-height-of-dummy-row-item="10" data-insert-footer-spacer-with-dummy-row-item-while-format-table="n">
  <div class="pheader" data-height="40">Header</div>
  <div class="prowitem" data-height="70">one</div>
  <div class="prowitem" data-height="70">two</div>
  <div class="prowitem" data-height="70">three</div>
  <div class="pfooter" data-height="25">Footer</div>
</div>
</body></html>`

func setup(t *testing.T, src string) (*dom.Document, *form.Form) {
	t.Helper()
	doc, err := dom.NewParser().ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	f, err := form.Build(form.Find(doc)[0], config.Default(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return doc, f
}

func countClass(n *dom.Node, class string) int {
	return len(n.FindAll(dom.ByClass(class)))
}

func TestApply(t *testing.T) {
	doc, f := setup(t, source)
	s, err := f.Paginate(nil)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))))
	out, err := r.Apply(f, s)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(form.Find(doc)) != 0 {
		t.Error("source form must be removed")
	}
	if out.Parent == nil || !out.HasClass(ClassFormatter+ProcessedSuffix) {
		t.Fatal("formatter not inserted")
	}

	// capacity 160: two items on page 1, one on page 2
	if got := countClass(out, ClassPageBreak); got != 1 {
		t.Errorf("page breaks = %d, want 1", got)
	}
	if got := countClass(out, "pheader_processed"); got != 2 {
		t.Errorf("headers = %d, want 2", got)
	}
	if got := countClass(out, "prowitem_processed"); got != 3 {
		t.Errorf("items = %d, want 3", got)
	}
	if got := countClass(out, "pfooter_processed"); got != 1 {
		t.Errorf("footers = %d, want 1", got)
	}
	if countClass(out, "prowitem") != 0 {
		t.Error("unprocessed class left on clones")
	}

	// page 1 slack 20: two dummy items, page 2 slack 65: six dummy items and a 5px spacer
	if got := countClass(out, ClassDummyRowItem); got != 8 {
		t.Errorf("dummy row items = %d, want 8", got)
	}
	tables := out.FindAll(dom.ByClass(ClassDummyRowItem))
	if w := tables[0].AttrVal("width"); w != "600px" {
		t.Errorf("dummy width = %q", w)
	}
	spacers := out.FindAll(dom.ByClass(ClassSpacer))
	if len(spacers) != 2 {
		t.Fatalf("spacers = %d, want 2", len(spacers))
	}
	if st := spacers[1].AttrVal("style"); st != "height:5px;" {
		t.Errorf("last spacer style = %q", st)
	}

	rendered, err := doc.Render()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<div class="div_page_break_before" style="page-break-before: always; height: 0px;"></div>`,
		`<tr style="height:10px;"><td style="border:0px solid black;"></td></tr>`,
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("output lacks %s", want)
		}
	}
}

func TestCustomDummyContent(t *testing.T) {
	_, f := setup(t, `<div class="printform" data-papersize-height="100" data-custom-dummy-row-item-content="<tr class='ruled'><td>-</td></tr>"><div class="prowitem" data-height="64">x</div></div>`)
	s, err := f.Paginate(nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := NewRenderer(nil).Format(f, s)
	if err != nil {
		t.Fatal(err)
	}
	// 36 px of slack with the default 18 px unit
	if got := countClass(out, "ruled"); got != 2 {
		t.Errorf("custom rows = %d, want 2", got)
	}
}

func TestDummyRowIgnoresCustomContent(t *testing.T) {
	_, f := setup(t, `<div class="printform"><div class="prowitem" data-height="10">x</div></div>`)
	e := pagination.EmitFiller(pagination.FillerDummyRow, 1, 7.5, "<tr class='ruled'></tr>")
	out, err := NewRenderer(nil).Format(f, pagination.Stream{pagination.EmitRowItem(0), e})
	if err != nil {
		t.Fatal(err)
	}
	if countClass(out, ClassDummyRow) != 1 || countClass(out, "ruled") != 0 {
		t.Error("dummy row must use the exact height row")
	}
	if _, err := NewRenderer(nil).Format(f, pagination.Stream{pagination.EmitRowItem(5)}); err == nil {
		t.Error("out of range item must fail")
	}
}

func TestSeparateFrom(t *testing.T) {
	parent := dom.NewElement("body")
	a, b := dom.NewElement("div"), dom.NewElement("div")
	parent.AppendChild(a)
	parent.AppendChild(b)
	SeparateFrom(b)
	if !a.NextSibling.HasClass(ClassPageBreak) || a.NextSibling.NextSibling != b {
		t.Error("break not inserted between documents")
	}
	SeparateFrom(dom.NewElement("div"))
}
