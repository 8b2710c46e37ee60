package drawio

import (
	"strings"

	"github.com/matzehuels/dotdraw/pkg/graph"
)

// style accumulates a draw.io style string ("key=value;flag;...") in the
// order entries are added.
type style struct {
	sb strings.Builder
}

func (s *style) flag(name string) *style {
	s.sb.WriteString(name)
	s.sb.WriteByte(';')
	return s
}

func (s *style) set(key, value string) *style {
	if value == "" {
		return s
	}
	s.sb.WriteString(key)
	s.sb.WriteByte('=')
	s.sb.WriteString(sanitize(value))
	s.sb.WriteByte(';')
	return s
}

func (s *style) String() string { return s.sb.String() }

// sanitize drops the characters that delimit style entries.
func sanitize(v string) string {
	return strings.Map(func(r rune) rune {
		if r == ';' || r == '=' {
			return -1
		}
		return r
	}, strings.TrimSpace(v))
}

func shapeStyle(n graph.Node) string {
	var s style
	switch n.EffectiveShape() {
	case graph.ShapeEllipse:
		s.flag("ellipse").flag("whiteSpace=wrap")
	case graph.ShapeDiamond:
		s.flag("rhombus").flag("whiteSpace=wrap")
	case graph.ShapePlain:
		s.flag("text").set("strokeColor", "none").set("fillColor", "none").
			set("align", "center").set("verticalAlign", "middle")
	default:
		s.set("rounded", "0").flag("whiteSpace=wrap")
	}
	if n.EffectiveShape() != graph.ShapePlain {
		s.set("fillColor", n.Attrs["fillcolor"]).set("strokeColor", n.Attrs["color"])
	}
	s.set("fontColor", n.Attrs["fontcolor"])
	if n.HTML {
		s.set("html", "1")
	}
	return s.String()
}

func connectorStyle(e graph.Edge) string {
	var s style
	s.set("edgeStyle", "none").set("rounded", "0")
	switch {
	case e.Attrs["dir"] == "back":
		s.set("startArrow", "classic").set("endArrow", "none")
	case e.Attrs["dir"] == "both":
		s.set("startArrow", "classic").set("endArrow", "classic")
	case e.Directed:
		s.set("endArrow", "classic")
	default:
		s.set("endArrow", "none")
	}
	s.set("strokeColor", e.Attrs["color"]).set("fontColor", e.Attrs["fontcolor"])
	if e.LabelHTML {
		s.set("html", "1")
	}
	return s.String()
}
