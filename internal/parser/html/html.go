package html

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser represents an HTML parser
type Parser struct{}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents a parsed HTML document
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := convertNode(node, nil)
	return &Document{Root: root}, nil
}

// ParseFragment parses markup in the context of an element with the given tag,
// for example "tbody" for table rows.
func (p *Parser) ParseFragment(content, contextTag string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: contextTag, DataAtom: atom.Lookup([]byte(contextTag))}
	nodes, err := html.ParseFragment(strings.NewReader(content), ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, convertNode(n, nil))
	}
	return out, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   append([]html.Attribute(nil), n.Attr...),
		Parent: parent,
	}

	var lastChild *Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child := convertNode(c, node)
		if node.FirstChild == nil {
			node.FirstChild = child
		}
		if lastChild != nil {
			lastChild.NextSibling = child
			child.PrevSibling = lastChild
		}
		lastChild = child
	}
	node.LastChild = lastChild

	return node
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *Node {
	return &Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

// Attribute is a shorthand for html.Attribute literals.
func Attribute(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// IsElement reports whether the node is an element, optionally with one of the given tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if strings.EqualFold(n.Data, t) {
			return true
		}
	}
	return false
}

// Lookup returns attribute value by case insensitive name.
func (n *Node) Lookup(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrVal returns attribute value or empty string.
func (n *Node) AttrVal(key string) string {
	v, _ := n.Lookup(key)
	return v
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Tag returns the element name.
func (n *Node) Tag() string {
	return n.Data
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return n.AttrVal("id")
}

// Classes returns the list of class names.
func (n *Node) Classes() []string {
	return strings.Fields(n.AttrVal("class"))
}

// HasClass reports whether the element carries the class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// ReplaceClass swaps one class name for another, keeping order.
func (n *Node) ReplaceClass(from, to string) {
	classes := n.Classes()
	for i, c := range classes {
		if c == from {
			classes[i] = to
		}
	}
	n.SetAttr("class", strings.Join(classes, " "))
}

// FindAll returns every descendant element (including n) satisfying match, in document order.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.IsElement() && match(cur) {
			out = append(out, cur)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// FindFirst returns first matching descendant element or nil.
func (n *Node) FindFirst(match func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	if n.IsElement() && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := c.FindFirst(match); found != nil {
			return found
		}
	}
	return nil
}

// ByClass returns a matcher for FindAll/FindFirst.
func ByClass(class string) func(*Node) bool {
	return func(n *Node) bool { return n.HasClass(class) }
}

// ByTag returns a matcher for FindAll/FindFirst.
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return strings.EqualFold(n.Data, tag) }
}

// Clone returns a detached deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Type: n.Type,
		Data: n.Data,
		Attr: append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(c.Clone())
	}
	return clone
}

// AppendChild adds a detached node as the last child.
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	c.PrevSibling = n.LastChild
	c.NextSibling = nil
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
}

// InsertBefore inserts a detached node c before the child ref.
func (n *Node) InsertBefore(c, ref *Node) {
	if ref == nil {
		n.AppendChild(c)
		return
	}
	c.Parent = n
	c.NextSibling = ref
	c.PrevSibling = ref.PrevSibling
	if ref.PrevSibling != nil {
		ref.PrevSibling.NextSibling = c
	} else {
		n.FirstChild = c
	}
	ref.PrevSibling = c
}

// Remove detaches the node from its parent.
func (n *Node) Remove() {
	p := n.Parent
	if p == nil {
		return
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	} else {
		p.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	} else {
		p.LastChild = n.PrevSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
}

// Text returns concatenated text content.
func (n *Node) Text() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Render renders the document back to HTML
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := RenderNode(&buf, d.Root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderNode renders a node and all of its descendants to HTML
func RenderNode(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	return html.Render(w, toHTML(n))
}

// toHTML converts our Node subtree back to an html.Node subtree
func toHTML(n *Node) *html.Node {
	node := &html.Node{
		Type: n.Type,
		Data: n.Data,
		Attr: n.Attr,
	}
	if n.Type == html.ElementNode {
		node.DataAtom = atom.Lookup([]byte(n.Data))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.AppendChild(toHTML(c))
	}
	return node
}
