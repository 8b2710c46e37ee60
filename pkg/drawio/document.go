package drawio

import (
	"time"

	"github.com/matzehuels/dotdraw/pkg/graph"
)

// Host is the value of the mxfile host attribute.
const Host = "dotdraw"

// Document is a single-page draw.io diagram.
type Document struct {
	ID         string
	Name       string
	Agent      string
	Modified   time.Time // Zero means "not recorded"
	PageWidth  int
	PageHeight int
	Shapes     []Shape
	Connectors []Connector
}

// Shape is a vertex cell.
type Shape struct {
	ID       string
	Label    string
	Style    string
	Geometry graph.Rect
}

// Connector is an edge cell. SourcePoint and TargetPoint are the ports on
// the two shapes' borders; Waypoints are the bends in between.
type Connector struct {
	ID          string
	Source      string // Shape id
	Target      string // Shape id
	Label       string
	Style       string
	SourcePoint graph.Point
	TargetPoint graph.Point
	Waypoints   []graph.Point
}

// Shape returns the shape with the given id.
func (d *Document) Shape(id string) (Shape, bool) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}
