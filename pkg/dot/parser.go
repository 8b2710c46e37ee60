package dot

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
)

// PointsPerInch converts DOT's inch-based spacing attributes into diagram
// units.
const PointsPerInch = 72.0

// MaxInches bounds ranksep and nodesep.
const MaxInches = 1000.0

// Option configures Parse.
type Option func(*config)

type config struct {
	explicitNodes  bool
	noRedefinition bool
}

// WithExplicitNodes forbids implicit node declaration: every edge endpoint
// must appear in a node statement somewhere in the text.
func WithExplicitNodes() Option {
	return func(c *config) { c.explicitNodes = true }
}

// WithNoRedefinition rejects a node statement that changes an attribute an
// earlier statement for the same node already set.
func WithNoRedefinition() Option {
	return func(c *config) { c.noRedefinition = true }
}

// Parse reads exactly one graph from text.
//
// Malformed text yields a *errors.SyntaxError carrying the 1-based line and
// column of the offending token. Text that is well-formed but breaks a
// structural rule yields a *errors.SemanticError. The returned graph keeps
// nodes and edges in the order they first appear.
func Parse(text string, opts ...Option) (*graph.Graph, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{
		toks:     toks,
		cfg:      cfg,
		declared: make(map[int]bool),
		explicit: make(map[int]map[string]string),
	}
	return p.parse()
}

// attr is one key=value pair from an attribute list.
type attr struct {
	key  string
	val  string
	html bool
	pos  token
}

// attrList keeps attributes in source order; later keys replace earlier ones.
type attrList []attr

func (l attrList) with(more attrList) attrList {
	out := slices.Clone(l)
	for _, a := range more {
		if i := slices.IndexFunc(out, func(b attr) bool { return b.key == a.key }); i >= 0 {
			out[i] = a
			continue
		}
		out = append(out, a)
	}
	return out
}

// scope holds the attribute defaults of a graph or subgraph body.
type scope struct {
	nodeDefaults attrList
	edgeDefaults attrList
	root         bool
	members      []int // node indices referenced in this body, first-seen order
}

func (s *scope) addMember(i int) {
	if !slices.Contains(s.members, i) {
		s.members = append(s.members, i)
	}
}

type parser struct {
	toks []token
	pos  int
	cfg  config
	g    *graph.Graph

	declared map[int]bool              // nodes with a node statement
	explicit map[int]map[string]string // attributes set by node statements
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorAt(t token, format string, args ...any) error {
	return &errors.SyntaxError{Line: t.line, Column: t.col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, p.errorAt(t, "expected %s, found %s", what, t)
	}
	return p.advance(), nil
}

// id consumes an identifier that is not a keyword.
func (p *parser) id(what string) (token, error) {
	t := p.peek()
	if t.kind != tokID || t.keyword() != "" {
		return t, p.errorAt(t, "expected %s, found %s", what, t)
	}
	return p.advance(), nil
}

func (p *parser) parse() (*graph.Graph, error) {
	first := p.peek()
	strict := false
	if first.keyword() == "strict" {
		p.advance()
		strict = true
	}
	head := p.peek()
	var directed bool
	switch head.keyword() {
	case "digraph":
		directed = true
	case "graph":
	default:
		return nil, p.errorAt(head, "expected 'graph' or 'digraph', found %s", head)
	}
	p.advance()

	name := ""
	if t := p.peek(); t.kind == tokID && t.keyword() == "" {
		name = p.advance().text
	}
	p.g = graph.New(name, directed)
	p.g.Strict = strict

	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	if err := p.stmtList(&scope{root: true}); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != tokEOF {
		switch t.keyword() {
		case "strict", "graph", "digraph":
			return nil, p.errorAt(t, "only one graph per input")
		}
		return nil, p.errorAt(t, "unexpected %s after graph", t)
	}

	if p.cfg.explicitNodes {
		if err := p.checkDeclared(); err != nil {
			return nil, err
		}
	}
	return p.g, nil
}

func (p *parser) checkDeclared() error {
	nodes := p.g.Nodes()
	for _, e := range p.g.Edges() {
		for _, end := range [2]int{e.From, e.To} {
			if !p.declared[end] {
				return &errors.SemanticError{
					Detail: fmt.Sprintf("node %q is used in an edge but never declared", nodes[end].ID),
				}
			}
		}
	}
	return nil
}

func (p *parser) stmtList(sc *scope) error {
	for {
		t := p.peek()
		if t.kind == tokRBrace || t.kind == tokEOF {
			return nil
		}
		if err := p.stmt(sc); err != nil {
			return err
		}
		if p.peek().kind == tokSemi {
			p.advance()
		}
	}
}

func (p *parser) stmt(sc *scope) error {
	t := p.peek()
	switch t.keyword() {
	case "graph":
		p.advance()
		attrs, err := p.attrLists(true)
		if err != nil {
			return err
		}
		if sc.root {
			return p.applyGraphAttrs(attrs)
		}
		return nil
	case "node":
		p.advance()
		attrs, err := p.attrLists(true)
		if err != nil {
			return err
		}
		sc.nodeDefaults = sc.nodeDefaults.with(attrs)
		return nil
	case "edge":
		p.advance()
		attrs, err := p.attrLists(true)
		if err != nil {
			return err
		}
		sc.edgeDefaults = sc.edgeDefaults.with(attrs)
		return nil
	case "subgraph":
		members, err := p.subgraph(sc)
		if err != nil {
			return err
		}
		return p.edgeTail(sc, members)
	case "strict", "digraph":
		return p.errorAt(t, "unexpected keyword %s in statement", t)
	}

	switch t.kind {
	case tokLBrace:
		members, err := p.subgraph(sc)
		if err != nil {
			return err
		}
		return p.edgeTail(sc, members)
	case tokID:
		if p.peekAt(1).kind == tokEqual {
			key := p.advance()
			p.advance()
			val, err := p.id("attribute value")
			if err != nil {
				return err
			}
			if sc.root {
				return p.applyGraphAttrs(attrList{{key: key.text, val: val.text, html: val.html, pos: key}})
			}
			return nil
		}
		return p.nodeOrEdge(sc)
	}
	return p.errorAt(t, "unexpected %s", t)
}

// nodeOrEdge parses a statement starting with a node_id.
func (p *parser) nodeOrEdge(sc *scope) error {
	idTok, err := p.nodeID()
	if err != nil {
		return err
	}
	if k := p.peek().kind; k == tokArrow || k == tokLine {
		i, err := p.touchNode(sc, idTok)
		if err != nil {
			return err
		}
		return p.edgeTail(sc, []int{i})
	}

	attrs, err := p.attrLists(false)
	if err != nil {
		return err
	}
	i, err := p.touchNode(sc, idTok)
	if err != nil {
		return err
	}
	p.declared[i] = true
	return p.applyNodeStmt(i, attrs)
}

// nodeID consumes ID [':' ID [':' ID]]; ports are accepted and dropped.
func (p *parser) nodeID() (token, error) {
	t, err := p.id("node identifier")
	if err != nil {
		return t, err
	}
	for n := 0; n < 2 && p.peek().kind == tokColon; n++ {
		p.advance()
		if _, err := p.id("port"); err != nil {
			return t, err
		}
	}
	return t, nil
}

// touchNode returns the index for a node id, creating the node with the
// scope's defaults when it is new.
func (p *parser) touchNode(sc *scope, t token) (int, error) {
	if t.text == "" {
		return -1, &errors.SemanticError{Detail: fmt.Sprintf("empty node identifier at %d:%d", t.line, t.col)}
	}
	i, created, err := p.g.EnsureNode(t.text)
	if err != nil {
		return -1, &errors.SemanticError{Detail: err.Error()}
	}
	if created {
		for _, a := range sc.nodeDefaults {
			p.setNodeAttr(i, a)
		}
	}
	sc.addMember(i)
	return i, nil
}

func (p *parser) applyNodeStmt(i int, attrs attrList) error {
	set := p.explicit[i]
	if set == nil {
		set = make(map[string]string)
		p.explicit[i] = set
	}
	for _, a := range attrs {
		if prev, ok := set[a.key]; ok && prev != a.val && p.cfg.noRedefinition {
			return &errors.SemanticError{Detail: fmt.Sprintf(
				"node %q: attribute %q redefined from %q to %q at %d:%d",
				p.g.Node(i).ID, a.key, prev, a.val, a.pos.line, a.pos.col)}
		}
		set[a.key] = a.val
		p.setNodeAttr(i, a)
	}
	return nil
}

// subgraph parses [subgraph [ID]] '{' stmt_list '}' and returns its nodes.
func (p *parser) subgraph(parent *scope) ([]int, error) {
	if p.peek().keyword() == "subgraph" {
		p.advance()
		if t := p.peek(); t.kind == tokID && t.keyword() == "" {
			p.advance()
		}
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	sc := &scope{
		nodeDefaults: slices.Clone(parent.nodeDefaults),
		edgeDefaults: slices.Clone(parent.edgeDefaults),
	}
	if err := p.stmtList(sc); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}
	for _, m := range sc.members {
		parent.addMember(m)
	}
	return sc.members, nil
}

// edgeTail parses (edgeop operand)+ [attr_list] after a first operand. With
// no edge operator following, the operand stands alone.
func (p *parser) edgeTail(sc *scope, first []int) error {
	operands := [][]int{first}
	for {
		op := p.peek()
		if op.kind != tokArrow && op.kind != tokLine {
			break
		}
		if op.kind == tokArrow && !p.g.Directed {
			return p.errorAt(op, "'->' used in an undirected graph; use '--'")
		}
		if op.kind == tokLine && p.g.Directed {
			return p.errorAt(op, "'--' used in a directed graph; use '->'")
		}
		p.advance()

		next := p.peek()
		var members []int
		switch {
		case next.kind == tokLBrace || next.keyword() == "subgraph":
			var err error
			if members, err = p.subgraph(sc); err != nil {
				return err
			}
		case next.kind == tokID && next.keyword() == "":
			t, err := p.nodeID()
			if err != nil {
				return err
			}
			i, err := p.touchNode(sc, t)
			if err != nil {
				return err
			}
			members = []int{i}
		default:
			return p.errorAt(next, "expected node identifier or subgraph, found %s", next)
		}
		operands = append(operands, members)
	}
	if len(operands) == 1 {
		return nil
	}

	attrs, err := p.attrLists(false)
	if err != nil {
		return err
	}
	attrs = sc.edgeDefaults.with(attrs)
	for k := 0; k+1 < len(operands); k++ {
		for _, from := range operands[k] {
			for _, to := range operands[k+1] {
				p.addEdge(from, to, attrs)
			}
		}
	}
	return nil
}

func (p *parser) addEdge(from, to int, attrs attrList) {
	if p.g.Strict {
		if i := p.g.FindEdge(from, to); i >= 0 {
			for _, a := range attrs {
				p.setEdgeAttr(i, a)
			}
			return
		}
	}
	i, _ := p.g.AddEdge(graph.Edge{From: from, To: to, Directed: p.g.Directed})
	for _, a := range attrs {
		p.setEdgeAttr(i, a)
	}
}

// attrLists parses zero or more '[' a_list ']' groups. When required is
// set, at least one group must be present.
func (p *parser) attrLists(required bool) (attrList, error) {
	if required && p.peek().kind != tokLBracket {
		t := p.peek()
		return nil, p.errorAt(t, "expected '[', found %s", t)
	}
	var out attrList
	for p.peek().kind == tokLBracket {
		p.advance()
		for p.peek().kind != tokRBracket {
			key, err := p.id("attribute name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokEqual, "'='"); err != nil {
				return nil, err
			}
			val, err := p.id("attribute value")
			if err != nil {
				return nil, err
			}
			out = out.with(attrList{{key: key.text, val: val.text, html: val.html, pos: key}})
			if k := p.peek().kind; k == tokSemi || k == tokComma {
				p.advance()
			}
		}
		p.advance()
	}
	return out, nil
}

// =============================================================================
// Attribute interpretation
// =============================================================================

func (p *parser) setNodeAttr(i int, a attr) {
	n := p.g.Node(i)
	switch a.key {
	case "label":
		n.HTML = a.html
		if a.html {
			n.Label = a.val
		} else {
			n.Label = expandEscapes(a.val, n.ID, p.g.Name)
		}
	case "shape":
		n.Shape = shapeOf(a.val)
	case "fillcolor", "color", "fontcolor":
		if n.Attrs == nil {
			n.Attrs = graph.Attrs{}
		}
		n.Attrs[a.key] = a.val
	}
}

func (p *parser) setEdgeAttr(i int, a attr) {
	e := p.g.Edge(i)
	switch a.key {
	case "label":
		e.LabelHTML = a.html
		if a.html {
			e.Label = a.val
		} else {
			nodes := p.g.Nodes()
			e.Label = expandEscapes(a.val, "", p.g.Name, nodes[e.From].ID, nodes[e.To].ID)
		}
	case "dir":
		switch strings.ToLower(a.val) {
		case "none":
			e.Directed = false
			delete(e.Attrs, "dir")
		case "forward":
			e.Directed = true
			delete(e.Attrs, "dir")
		case "back", "both":
			e.Directed = true
			if e.Attrs == nil {
				e.Attrs = graph.Attrs{}
			}
			e.Attrs["dir"] = strings.ToLower(a.val)
		}
	case "color", "fontcolor":
		if e.Attrs == nil {
			e.Attrs = graph.Attrs{}
		}
		e.Attrs[a.key] = a.val
	}
}

func (p *parser) applyGraphAttrs(attrs attrList) error {
	for _, a := range attrs {
		switch a.key {
		case "rankdir":
			switch strings.ToUpper(a.val) {
			case "TB", "BT":
				p.g.Hints.Direction = graph.DirectionTopDown
			case "LR", "RL":
				p.g.Hints.Direction = graph.DirectionLeftRight
			}
		case "ranksep", "nodesep":
			v, err := inches(a.val)
			if err != nil {
				return &errors.SemanticError{Detail: fmt.Sprintf(
					"%s at %d:%d: %v", a.key, a.pos.line, a.pos.col, err)}
			}
			if a.key == "ranksep" {
				p.g.Hints.LayerSpacing = v
			} else {
				p.g.Hints.NodeSpacing = v
			}
		case "label":
			if a.html {
				p.g.Label = a.val
			} else {
				p.g.Label = expandEscapes(a.val, "", p.g.Name)
			}
		}
	}
	return nil
}

// inches parses a spacing value such as "0.5" or "1.2 equally" and converts
// it to diagram units.
func inches(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%q must not be negative", s)
	}
	if v > MaxInches {
		return 0, fmt.Errorf("%q exceeds %g inches", s, MaxInches)
	}
	return v * PointsPerInch, nil
}

func shapeOf(s string) graph.Shape {
	switch strings.ToLower(s) {
	case "ellipse", "oval", "circle", "doublecircle", "point", "egg":
		return graph.ShapeEllipse
	case "diamond", "mdiamond":
		return graph.ShapeDiamond
	case "plain", "plaintext", "none", "underline":
		return graph.ShapePlain
	}
	return graph.ShapeBox
}

// expandEscapes interprets the label escapes \N (node id), \G (graph name),
// \T and \H (edge tail and head), \n \l \r (line breaks) and \\.
func expandEscapes(s, nodeID, graphName string, ends ...string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'N':
			sb.WriteString(nodeID)
		case 'G':
			sb.WriteString(graphName)
		case 'T':
			if len(ends) == 2 {
				sb.WriteString(ends[0])
			}
		case 'H':
			if len(ends) == 2 {
				sb.WriteString(ends[1])
			}
		case 'n', 'l', 'r':
			sb.WriteByte('\n')
		default:
			sb.WriteByte(s[i])
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
