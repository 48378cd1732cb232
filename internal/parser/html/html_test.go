package html

import (
	"strings"
	"testing"

	xhtml "golang.org/x/net/html"
)

const sample = `<html><body>
<div class="printform" data-papersize-height="900">
  <div class="pheader">Header</div>
  <div class="prowitem">one</div>
  <div class="prowitem tb_page_break_before">two</div>
</div>
</body></html>`

func TestParseAndFind(t *testing.T) {
	doc, err := NewParser().ParseString(sample)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	forms := doc.Root.FindAll(ByClass("printform"))
	if len(forms) != 1 {
		t.Fatalf("found %d forms, want 1", len(forms))
	}
	form := forms[0]
	if v, ok := form.Lookup("DATA-PAPERSIZE-HEIGHT"); !ok || v != "900" {
		t.Errorf("Lookup() = %q, %v", v, ok)
	}

	items := form.FindAll(ByClass("prowitem"))
	if len(items) != 2 {
		t.Fatalf("found %d items, want 2", len(items))
	}
	if items[0].Text() != "one" || items[1].Text() != "two" {
		t.Errorf("unexpected item order: %q %q", items[0].Text(), items[1].Text())
	}
	if !items[1].HasClass("tb_page_break_before") || items[0].HasClass("tb_page_break_before") {
		t.Error("HasClass mismatch")
	}
	if h := form.FindFirst(ByClass("pheader")); h == nil || h.Text() != "Header" {
		t.Error("FindFirst did not locate header")
	}
	if form.FindFirst(ByClass("pfooter")) != nil {
		t.Error("FindFirst returned a node for missing class")
	}
}

func TestCloneIsDeepAndDetached(t *testing.T) {
	doc, err := NewParser().ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}
	item := doc.Root.FindFirst(ByClass("prowitem"))
	clone := item.Clone()
	if clone.Parent != nil || clone.NextSibling != nil {
		t.Error("clone must be detached")
	}
	clone.ReplaceClass("prowitem", "prowitem_processed")
	clone.FirstChild.Data = "changed"

	if !item.HasClass("prowitem") || item.Text() != "one" {
		t.Error("modifying clone changed the source")
	}
	if !clone.HasClass("prowitem_processed") || clone.Text() != "changed" {
		t.Error("clone was not modified")
	}
}

func TestTreeEditing(t *testing.T) {
	parent := NewElement("div")
	a := NewElement("p", Attribute("id", "a"))
	b := NewElement("p", Attribute("id", "b"))
	c := NewElement("p", Attribute("id", "c"))
	parent.AppendChild(a)
	parent.AppendChild(c)
	parent.InsertBefore(b, c)

	var ids []string
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		ids = append(ids, n.AttrVal("id"))
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Fatalf("order = %v", ids)
	}

	b.Remove()
	a.Remove()
	if parent.FirstChild != c || parent.LastChild != c || c.PrevSibling != nil {
		t.Error("Remove() left dangling links")
	}
}

func TestRenderNodeIsDeep(t *testing.T) {
	div := NewElement("div", Attribute("class", "x"))
	p := NewElement("p")
	span := NewElement("span")
	span.AppendChild(&Node{Type: xhtml.TextNode, Data: "deep"})
	p.AppendChild(span)
	div.AppendChild(p)

	var b strings.Builder
	if err := RenderNode(&b, div); err != nil {
		t.Fatalf("RenderNode() error = %v", err)
	}
	if got := b.String(); got != `<div class="x"><p><span>deep</span></p></div>` {
		t.Errorf("RenderNode() = %s", got)
	}
}

func TestParseFragment(t *testing.T) {
	nodes, err := NewParser().ParseFragment(`<tr><td>a</td></tr><tr><td>b</td></tr>`, "tbody")
	if err != nil {
		t.Fatalf("ParseFragment() error = %v", err)
	}
	if len(nodes) != 2 || !nodes[0].IsElement("tr") || nodes[1].Text() != "b" {
		t.Errorf("unexpected fragment: %d nodes", len(nodes))
	}
}
