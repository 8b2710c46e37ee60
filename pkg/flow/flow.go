// Package flow turns Go source into a flow-chart graph.
//
// Every function becomes an ellipse node; its statements hang below it as
// boxes, and branching statements (if, for, range, switch, select) become
// diamonds whose bodies hang below them. Edges run from a statement to the
// statements nested directly inside it and are labelled with the branch
// they belong to ("then", "else", "body", "case ..."). Node ids come from a
// counter local to each call ("n1", "n2", ...), so building the same source
// twice gives the same graph.
//
// The result is an ordinary [graph.Graph]: write it with [dot.Write] or feed
// it straight to the layout.
package flow

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
)

// MaxLabelRunes bounds statement labels; longer ones are cut with "...".
const MaxLabelRunes = 60

// Options configures Build.
type Options struct {
	// Func restricts the chart to the function (or method) with this name.
	Func string
}

// Build parses Go source and returns its flow graph. src may be nil, in
// which case filename is read from disk; otherwise it is the source text
// ([]byte or string) and filename only names the graph.
//
// Unparseable source yields an *errors.SyntaxError; a Func that names no
// function yields an *errors.SemanticError.
func Build(filename string, src any, opts Options) (*graph.Graph, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		var list scanner.ErrorList
		if stderrors.As(err, &list) && len(list) > 0 {
			return nil, &errors.SyntaxError{Line: list[0].Pos.Line, Column: list[0].Pos.Column, Message: list[0].Msg}
		}
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	b := &builder{fset: fset, g: graph.New(name, true)}
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		if opts.Func != "" && fn.Name.Name != opts.Func {
			continue
		}
		b.function(fn)
	}
	if opts.Func != "" && b.g.NodeCount() == 0 {
		return nil, &errors.SemanticError{Detail: fmt.Sprintf("no function %q in %s", opts.Func, filename)}
	}
	return b.g, nil
}

type builder struct {
	fset  *token.FileSet
	g     *graph.Graph
	count int
}

func (b *builder) add(label string, shape graph.Shape, parent int, edgeLabel string) int {
	b.count++
	i, _ := b.g.AddNode(graph.Node{
		ID:    fmt.Sprintf("n%d", b.count),
		Label: clip(label),
		Shape: shape,
	})
	if parent >= 0 {
		_, _ = b.g.AddEdge(graph.Edge{From: parent, To: i, Label: edgeLabel, Directed: true})
	}
	return i
}

func (b *builder) function(fn *ast.FuncDecl) {
	label := "func " + fn.Name.Name
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		label = fmt.Sprintf("func (%s) %s", b.src(fn.Recv.List[0].Type), fn.Name.Name)
	}
	id := b.add(label, graph.ShapeEllipse, -1, "")
	b.stmts(fn.Body.List, id, "")
}

func (b *builder) stmts(list []ast.Stmt, parent int, edgeLabel string) {
	for _, s := range list {
		b.stmt(s, parent, edgeLabel)
	}
}

func (b *builder) stmt(s ast.Stmt, parent int, edgeLabel string) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		b.stmts(n.List, parent, edgeLabel)
	case *ast.LabeledStmt:
		b.stmt(n.Stmt, parent, edgeLabel)
	case *ast.EmptyStmt:
	case *ast.IfStmt:
		b.ifStmt(n, parent, edgeLabel)
	case *ast.ForStmt:
		label := "for"
		if n.Cond != nil {
			label = "for " + b.src(n.Cond)
		}
		id := b.add(label, graph.ShapeDiamond, parent, edgeLabel)
		b.stmts(n.Body.List, id, "body")
	case *ast.RangeStmt:
		label := "for range " + b.src(n.X)
		if n.Key != nil {
			vars := b.src(n.Key)
			if n.Value != nil {
				vars += ", " + b.src(n.Value)
			}
			label = fmt.Sprintf("for %s %s range %s", vars, n.Tok, b.src(n.X))
		}
		id := b.add(label, graph.ShapeDiamond, parent, edgeLabel)
		b.stmts(n.Body.List, id, "body")
	case *ast.SwitchStmt:
		label := "switch"
		if n.Tag != nil {
			label = "switch " + b.src(n.Tag)
		}
		id := b.add(label, graph.ShapeDiamond, parent, edgeLabel)
		b.clauses(n.Body.List, id)
	case *ast.TypeSwitchStmt:
		id := b.add("switch "+b.src(n.Assign), graph.ShapeDiamond, parent, edgeLabel)
		b.clauses(n.Body.List, id)
	case *ast.SelectStmt:
		id := b.add("select", graph.ShapeDiamond, parent, edgeLabel)
		b.clauses(n.Body.List, id)
	case *ast.ReturnStmt:
		label := "return"
		if len(n.Results) > 0 {
			parts := make([]string, len(n.Results))
			for i, r := range n.Results {
				parts[i] = b.src(r)
			}
			label += " " + strings.Join(parts, ", ")
		}
		b.add(label, graph.ShapeBox, parent, edgeLabel)
	default:
		b.add(b.src(s), graph.ShapeBox, parent, edgeLabel)
	}
}

func (b *builder) ifStmt(n *ast.IfStmt, parent int, edgeLabel string) {
	label := "if " + b.src(n.Cond)
	if n.Init != nil {
		label = "if " + b.src(n.Init) + "; " + b.src(n.Cond)
	}
	id := b.add(label, graph.ShapeDiamond, parent, edgeLabel)
	b.stmts(n.Body.List, id, "then")
	if n.Else != nil {
		b.stmt(n.Else, id, "else")
	}
}

func (b *builder) clauses(list []ast.Stmt, parent int) {
	for _, s := range list {
		var label string
		var body []ast.Stmt
		switch c := s.(type) {
		case *ast.CaseClause:
			label, body = b.caseLabel(c.List), c.Body
		case *ast.CommClause:
			label, body = "default", c.Body
			if c.Comm != nil {
				label = "case " + b.src(c.Comm)
			}
		default:
			continue
		}
		b.stmts(body, parent, clip(label))
	}
}

func (b *builder) caseLabel(exprs []ast.Expr) string {
	if len(exprs) == 0 {
		return "default"
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = b.src(e)
	}
	return "case " + strings.Join(parts, ", ")
}

// src prints a node back as Go source on one line.
func (b *builder) src(n ast.Node) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, b.fset, n); err != nil {
		return fmt.Sprintf("%T", n)
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= MaxLabelRunes {
		return s
	}
	return string(r[:MaxLabelRunes-3]) + "..."
}
