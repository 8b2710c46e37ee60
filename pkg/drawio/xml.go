package drawio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/dotdraw/pkg/graph"
)

// modifiedLayout is the timestamp format draw.io itself writes.
const modifiedLayout = "2006-01-02T15:04:05.000Z"

type xmlFile struct {
	XMLName  xml.Name   `xml:"mxfile"`
	Host     string     `xml:"host,attr"`
	Modified string     `xml:"modified,attr,omitempty"`
	Agent    string     `xml:"agent,attr,omitempty"`
	Diagram  xmlDiagram `xml:"diagram"`
}

type xmlDiagram struct {
	ID    string   `xml:"id,attr"`
	Name  string   `xml:"name,attr"`
	Model xmlModel `xml:"mxGraphModel"`
}

type xmlModel struct {
	Dx         int     `xml:"dx,attr"`
	Dy         int     `xml:"dy,attr"`
	Grid       int     `xml:"grid,attr"`
	GridSize   int     `xml:"gridSize,attr"`
	Guides     int     `xml:"guides,attr"`
	Tooltips   int     `xml:"tooltips,attr"`
	Connect    int     `xml:"connect,attr"`
	Arrows     int     `xml:"arrows,attr"`
	Fold       int     `xml:"fold,attr"`
	Page       int     `xml:"page,attr"`
	PageScale  int     `xml:"pageScale,attr"`
	PageWidth  int     `xml:"pageWidth,attr"`
	PageHeight int     `xml:"pageHeight,attr"`
	Math       int     `xml:"math,attr"`
	Shadow     int     `xml:"shadow,attr"`
	Root       xmlRoot `xml:"root"`
}

type xmlRoot struct {
	Cells []xmlCell `xml:"mxCell"`
}

type xmlCell struct {
	ID       string       `xml:"id,attr"`
	Value    string       `xml:"value,attr,omitempty"`
	Style    string       `xml:"style,attr,omitempty"`
	Vertex   string       `xml:"vertex,attr,omitempty"`
	Edge     string       `xml:"edge,attr,omitempty"`
	Parent   string       `xml:"parent,attr,omitempty"`
	Source   string       `xml:"source,attr,omitempty"`
	Target   string       `xml:"target,attr,omitempty"`
	Geometry *xmlGeometry `xml:"mxGeometry"`
}

type xmlGeometry struct {
	X        coord      `xml:"x,attr,omitempty"`
	Y        coord      `xml:"y,attr,omitempty"`
	Width    coord      `xml:"width,attr,omitempty"`
	Height   coord      `xml:"height,attr,omitempty"`
	Relative string     `xml:"relative,attr,omitempty"`
	As       string     `xml:"as,attr"`
	Points   []xmlPoint `xml:"mxPoint"`
	Array    *xmlArray  `xml:"Array"`
}

type xmlPoint struct {
	X  coord  `xml:"x,attr"`
	Y  coord  `xml:"y,attr"`
	As string `xml:"as,attr,omitempty"`
}

type xmlArray struct {
	As     string     `xml:"as,attr"`
	Points []xmlPoint `xml:"mxPoint"`
}

// coord writes numbers in plain decimal notation, never with an exponent.
type coord float64

func (c coord) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: strconv.FormatFloat(float64(c), 'f', -1, 64)}, nil
}

func (c *coord) UnmarshalXMLAttr(attr xml.Attr) error {
	v, err := strconv.ParseFloat(attr.Value, 64)
	if err != nil {
		return fmt.Errorf("attribute %s: %w", attr.Name.Local, err)
	}
	*c = coord(v)
	return nil
}

func toXMLPoint(p graph.Point, as string) xmlPoint {
	return xmlPoint{X: coord(p.X), Y: coord(p.Y), As: as}
}

func (d *Document) toXML() xmlFile {
	f := xmlFile{
		Host:  Host,
		Agent: d.Agent,
		Diagram: xmlDiagram{
			ID:   d.ID,
			Name: d.Name,
			Model: xmlModel{
				Dx: d.PageWidth, Dy: d.PageHeight,
				Grid: 1, GridSize: 10, Guides: 1, Tooltips: 1, Connect: 1, Arrows: 1, Fold: 1,
				Page: 1, PageScale: 1, PageWidth: d.PageWidth, PageHeight: d.PageHeight,
			},
		},
	}
	if !d.Modified.IsZero() {
		f.Modified = d.Modified.UTC().Format(modifiedLayout)
	}

	cells := make([]xmlCell, 0, 2+len(d.Shapes)+len(d.Connectors))
	cells = append(cells, xmlCell{ID: "0"}, xmlCell{ID: "1", Parent: "0"})
	for _, s := range d.Shapes {
		cells = append(cells, xmlCell{
			ID:     s.ID,
			Value:  s.Label,
			Style:  s.Style,
			Vertex: "1",
			Parent: "1",
			Geometry: &xmlGeometry{
				X:      coord(s.Geometry.X),
				Y:      coord(s.Geometry.Y),
				Width:  coord(s.Geometry.Width),
				Height: coord(s.Geometry.Height),
				As:     "geometry",
			},
		})
	}
	for _, c := range d.Connectors {
		geo := &xmlGeometry{
			Relative: "1",
			As:       "geometry",
			Points: []xmlPoint{
				toXMLPoint(c.SourcePoint, "sourcePoint"),
				toXMLPoint(c.TargetPoint, "targetPoint"),
			},
		}
		if len(c.Waypoints) > 0 {
			geo.Array = &xmlArray{As: "points"}
			for _, p := range c.Waypoints {
				geo.Array.Points = append(geo.Array.Points, toXMLPoint(p, ""))
			}
		}
		cells = append(cells, xmlCell{
			ID:       c.ID,
			Value:    c.Label,
			Style:    c.Style,
			Edge:     "1",
			Parent:   "1",
			Source:   c.Source,
			Target:   c.Target,
			Geometry: geo,
		})
	}
	f.Diagram.Model.Root.Cells = cells
	return f
}

// Encode writes the document as indented, uncompressed mxfile XML.
func (d *Document) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d.toXML()); err != nil {
		return fmt.Errorf("encode mxfile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an uncompressed mxfile document with a single diagram.
// Cells other than vertices and edges (the two root cells) are skipped.
func Decode(r io.Reader) (*Document, error) {
	var f xmlFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode mxfile: %w", err)
	}

	d := &Document{
		ID:         f.Diagram.ID,
		Name:       f.Diagram.Name,
		Agent:      f.Agent,
		PageWidth:  f.Diagram.Model.PageWidth,
		PageHeight: f.Diagram.Model.PageHeight,
	}
	if f.Modified != "" {
		t, err := time.Parse(modifiedLayout, f.Modified)
		if err != nil {
			return nil, fmt.Errorf("decode mxfile: modified: %w", err)
		}
		d.Modified = t
	}

	for _, c := range f.Diagram.Model.Root.Cells {
		switch {
		case c.Vertex == "1":
			s := Shape{ID: c.ID, Label: c.Value, Style: c.Style}
			if g := c.Geometry; g != nil {
				s.Geometry = graph.Rect{X: float64(g.X), Y: float64(g.Y), Width: float64(g.Width), Height: float64(g.Height)}
			}
			d.Shapes = append(d.Shapes, s)
		case c.Edge == "1":
			conn := Connector{ID: c.ID, Source: c.Source, Target: c.Target, Label: c.Value, Style: c.Style}
			if g := c.Geometry; g != nil {
				for _, p := range g.Points {
					pt := graph.Point{X: float64(p.X), Y: float64(p.Y)}
					switch strings.TrimSpace(p.As) {
					case "sourcePoint":
						conn.SourcePoint = pt
					case "targetPoint":
						conn.TargetPoint = pt
					}
				}
				if g.Array != nil {
					for _, p := range g.Array.Points {
						conn.Waypoints = append(conn.Waypoints, graph.Point{X: float64(p.X), Y: float64(p.Y)})
					}
				}
			}
			d.Connectors = append(d.Connectors, conn)
		}
	}
	return d, nil
}
