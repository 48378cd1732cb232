package form

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gompdf/printform/internal/config"
	"github.com/gompdf/printform/internal/measure"
	"github.com/gompdf/printform/internal/pagination"
	"github.com/gompdf/printform/internal/parser/html"
)

const twoForms = `<html><head><style>.prowitem { height: 20px }</style></head><body>
<div class="printform" id="first" data-papersize-height="500" data-repeat-footer="y">
  <div class="pheader" data-height="100.004">Header</div>
  <div class="pdocinfo" style="height:30px">Doc</div>
  <div class="prowheader" style="height:20px">Cols</div>
  <div class="prowitem">1</div>
  <div class="prowitem tb_page_break_before">2</div>
  <div class="prowitem" data-page-break-before="y" style="height:40px">3</div>
  <div class="pfooter" style="height:50px">Footer</div>
  <div class="pfooter_logo" style="height:25px">Logo</div>
</div>
<div class="printform" id="second">
  <div class="prowitem">only</div>
</div>
</body></html>`

func parse(t *testing.T, src string) *html.Document {
	t.Helper()
	doc, err := html.NewParser().ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestFind(t *testing.T) {
	forms := Find(parse(t, twoForms))
	if len(forms) != 2 {
		t.Fatalf("Find() returned %d forms", len(forms))
	}
	if forms[0].ID() != "first" || forms[1].ID() != "second" {
		t.Errorf("forms out of order: %s, %s", forms[0].ID(), forms[1].ID())
	}
	if Find(nil) != nil {
		t.Error("Find(nil) must be empty")
	}
}

func TestBuild(t *testing.T) {
	doc := parse(t, twoForms)
	node := Find(doc)[0]
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	f, err := Build(node, config.Default(), measure.NewStyleMeasurer(doc.Root), log)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if f.Config.PageHeight != 500 || !f.Config.RepeatFooter {
		t.Errorf("form attributes not applied: %+v", f.Config)
	}
	if f.Config.PageWidth != 750 {
		t.Errorf("base value lost: width %g", f.Config.PageWidth)
	}

	wantSections := map[pagination.SectionKind]float64{
		pagination.SectionHeader:     100,
		pagination.SectionDocInfo:    30,
		pagination.SectionRowHeader:  20,
		pagination.SectionFooter:     50,
		pagination.SectionFooterLogo: 25,
	}
	for kind, h := range wantSections {
		if got := f.Registry.Height(kind); got != h {
			t.Errorf("%s height = %g, want %g", kind, got, h)
		}
		if f.Section(kind) == nil || !f.Section(kind).HasClass(SectionClass(kind)) {
			t.Errorf("%s handle not recorded", kind)
		}
	}

	wantItems := []pagination.RowItem{
		{Height: 20},
		{Height: 20, ForceBreakBefore: true},
		{Height: 40, ForceBreakBefore: true},
	}
	if f.ItemCount() != len(wantItems) {
		t.Fatalf("ItemCount() = %d", f.ItemCount())
	}
	for i, want := range wantItems {
		if got := f.Registry.Items[i]; got != want {
			t.Errorf("item %d = %+v, want %+v", i, got, want)
		}
		if f.Item(i).Text() != []string{"1", "2", "3"}[i] {
			t.Errorf("item %d handle points to %q", i, f.Item(i).Text())
		}
	}
	if f.Item(3) != nil || f.Item(-1) != nil {
		t.Error("out of range item handle must be nil")
	}
}

func TestBuildMissingSectionsWarn(t *testing.T) {
	doc := parse(t, twoForms)
	core, logs := observer.New(zapcore.WarnLevel)

	f, err := Build(Find(doc)[1], config.Default(), nil, zap.New(core))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := logs.FilterMessage("Section not found, skipping").Len(); got != pagination.SectionCount {
		t.Errorf("got %d warnings, want %d", got, pagination.SectionCount)
	}
	for k := range pagination.SectionCount {
		if f.Registry.Present(pagination.SectionKind(k)) {
			t.Errorf("%s must be absent", pagination.SectionKind(k))
		}
	}
	if len(f.Registry.Items) != 1 || f.Registry.Items[0].Height != 20 {
		t.Errorf("items = %+v", f.Registry.Items)
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(nil, config.Default(), nil, nil); !errors.Is(err, ErrNoForms) {
		t.Errorf("Build(nil) error = %v", err)
	}

	doc := parse(t, `<div class="printform" data-height-of-dummy-row-item="0"><div class="prowitem">x</div></div>`)
	if _, err := Build(Find(doc)[0], config.Default(), nil, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Build() error = %v, want ErrInvalidConfig", err)
	}

	failing := measure.MeasureFunc(func(*html.Node) (float64, error) { return 0, errors.New("boom") })
	doc = parse(t, `<div class="printform"><div class="prowitem">x</div></div>`)
	if _, err := Build(Find(doc)[0], config.Default(), failing, nil); err == nil {
		t.Error("measurement failure must be reported")
	}
}

func TestFormPaginate(t *testing.T) {
	doc := parse(t, twoForms)
	f, err := Build(Find(doc)[0], config.Default(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := f.Paginate(zap.New(core))
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	// two forced breaks give three pages
	if s.PageCount() != 3 {
		t.Errorf("PageCount() = %d, stream %s", s.PageCount(), s)
	}
	if logs.FilterMessage("Page cut").Len() != 2 {
		t.Errorf("expected forced cuts logged, got %v", logs.All())
	}

	// form policy wins over engine defaults
	f.Config.PageHeight = 120
	if _, err := f.Paginate(nil); !errors.Is(err, pagination.ErrNoCapacity) {
		t.Errorf("Paginate() with short page error = %v", err)
	}
}
