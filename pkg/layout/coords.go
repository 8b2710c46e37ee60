package layout

import "github.com/matzehuels/dotdraw/pkg/graph"

// frame maps the layout's (order, rank) coordinates onto the page. Ranks
// grow down the page for top-down layouts and to the right for left-right
// layouts; orders run across.
type frame struct {
	leftRight   bool
	orderExtent float64 // node size along the order axis
	rankExtent  float64 // node size along the rank axis
}

func newFrame(o Options) frame {
	if o.Direction == graph.DirectionLeftRight {
		return frame{leftRight: true, orderExtent: o.NodeHeight, rankExtent: o.NodeWidth}
	}
	return frame{orderExtent: o.NodeWidth, rankExtent: o.NodeHeight}
}

func (f frame) point(order, rank float64) graph.Point {
	if f.leftRight {
		return graph.Point{X: rank, Y: order}
	}
	return graph.Point{X: order, Y: rank}
}

// box returns the page rectangle of a real node centred at (order, rank).
func (f frame) box(order, rank float64) graph.Rect {
	c := f.point(order, rank)
	w, h := f.orderExtent, f.rankExtent
	if f.leftRight {
		w, h = h, w
	}
	return graph.Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// placement holds the centre of every item on the order axis and of every
// layer on the rank axis.
type placement struct {
	order []float64 // per item
	rank  []float64 // per layer
}

// place packs each layer from left to right, NodeSpacing apart, and centres
// every layer on the widest one. Layer k is centred at
// k*(rankExtent+LayerSpacing) on the rank axis. Everything is offset by a
// margin of NodeSpacing.
func place(p *proper, order [][]int, o Options, f frame) placement {
	margin := o.NodeSpacing
	half := func(item int) float64 {
		if p.isVirtual(item) {
			return 0
		}
		return f.orderExtent / 2
	}

	pl := placement{
		order: make([]float64, len(p.layerOf)),
		rank:  make([]float64, len(order)),
	}
	widths := make([]float64, len(order))
	widest := 0.0
	for k, layer := range order {
		at := 0.0
		for i, item := range layer {
			if i == 0 {
				at = half(item)
			} else {
				at += half(layer[i-1]) + o.NodeSpacing + half(item)
			}
			pl.order[item] = at
		}
		if len(layer) > 0 {
			widths[k] = at + half(layer[len(layer)-1])
		}
		widest = max(widest, widths[k])
	}

	for k, layer := range order {
		shift := margin + (widest-widths[k])/2
		for _, item := range layer {
			pl.order[item] += shift
		}
		pl.rank[k] = margin + f.rankExtent/2 + float64(k)*(f.rankExtent+o.LayerSpacing)
	}
	return pl
}
