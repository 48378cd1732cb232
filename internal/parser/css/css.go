// Package css reads the subset of CSS needed to find declared heights: plain
// rule blocks, inline style attributes and absolute lengths.
package css

import (
	"io"
	"strings"
)

// Parser reads stylesheets. At-rules and malformed rules are skipped.
type Parser struct{}

// Rule is a selector list with its declarations.
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration is a single property: value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet keeps rules in source order.
type Stylesheet struct {
	Rules []*Rule
}

func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{Rules: []*Rule{}}
	for _, block := range blocks(stripComments(content)) {
		if rule, ok := parseRule(block); ok {
			sheet.Rules = append(sheet.Rules, rule)
		}
	}
	return sheet, nil
}

// Parse parses CSS from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.ParseString(string(content))
}

// ParseInline parses the content of a style attribute
func ParseInline(style string) []*Declaration {
	return parseDeclarations(stripComments(style))
}

func parseRule(block string) (*Rule, bool) {
	prelude, body, ok := strings.Cut(block, "{")
	prelude = strings.TrimSpace(prelude)
	if !ok || strings.HasPrefix(prelude, "@") {
		return nil, false
	}
	var selectors []string
	for sel := range strings.SplitSeq(prelude, ",") {
		if sel = strings.TrimSpace(sel); sel != "" {
			selectors = append(selectors, sel)
		}
	}
	if len(selectors) == 0 {
		return nil, false
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "}")
	return &Rule{Selectors: selectors, Declarations: parseDeclarations(body)}, true
}

func parseDeclarations(body string) []*Declaration {
	var out []*Declaration
	for decl := range strings.SplitSeq(body, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		prop = strings.ToLower(strings.TrimSpace(prop))
		if !ok || prop == "" {
			continue
		}
		val = strings.TrimSpace(val)
		d := &Declaration{Property: prop, Value: val}
		if v, found := strings.CutSuffix(val, "!important"); found {
			d.Value, d.Important = strings.TrimSpace(v), true
		}
		out = append(out, d)
	}
	return out
}

// stripComments drops /* */ comments, an unterminated one swallows the rest.
func stripComments(content string) string {
	var sb strings.Builder
	for {
		before, after, found := strings.Cut(content, "/*")
		sb.WriteString(before)
		if !found {
			break
		}
		_, rest, closed := strings.Cut(after, "*/")
		if !closed {
			break
		}
		content = rest
	}
	return sb.String()
}

// blocks splits content into top level "prelude { ... }" chunks, nested
// braces stay inside their chunk. Stray closing braces and unclosed trailing
// text are dropped.
func blocks(content string) []string {
	var (
		out   []string
		depth int
		start = -1
	)
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				out = append(out, content[start:i+1])
				start = -1
			}
			continue
		case '{':
			depth++
		}
		if start < 0 && !isSpace(content[i]) {
			start = i
		}
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Value returns the value of the last declaration of property, honoring
// !important.
func Value(decls []*Declaration, property string) (string, bool) {
	var (
		val       string
		found     bool
		important bool
	)
	for _, d := range decls {
		if d.Property != property || (important && !d.Important) {
			continue
		}
		val, found, important = d.Value, true, d.Important
	}
	return val, found
}

// Element is the part of a document node needed for selector matching.
type Element interface {
	Tag() string
	ID() string
	HasClass(class string) bool
}

// Lookup returns the value of property from the last rule whose selector
// matches el. Only simple compound selectors (tag, .class, #id and their
// combinations) are considered, anything with combinators or pseudo classes
// never matches.
func (s *Stylesheet) Lookup(el Element, property string) (string, bool) {
	if s == nil {
		return "", false
	}
	var matched []*Declaration
	for _, rule := range s.Rules {
		for _, sel := range rule.Selectors {
			if matchSimple(sel, el) {
				matched = append(matched, rule.Declarations...)
				break
			}
		}
	}
	return Value(matched, property)
}

// Merge appends rules of other sheets in order.
func (s *Stylesheet) Merge(other *Stylesheet) {
	if other == nil {
		return
	}
	s.Rules = append(s.Rules, other.Rules...)
}

// matchSimple matches compound selectors like "tr", ".prowitem", "div.pheader#top"
func matchSimple(sel string, el Element) bool {
	if sel == "" || strings.ContainsAny(sel, " >+~:[*") {
		return false
	}
	i := 0
	for i < len(sel) && sel[i] != '.' && sel[i] != '#' {
		i++
	}
	if tag := sel[:i]; tag != "" && !strings.EqualFold(tag, el.Tag()) {
		return false
	}
	for i < len(sel) {
		kind := sel[i]
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		name := sel[i+1 : j]
		if name == "" {
			return false
		}
		switch kind {
		case '.':
			if !el.HasClass(name) {
				return false
			}
		case '#':
			if el.ID() != name {
				return false
			}
		}
		i = j
	}
	return true
}
