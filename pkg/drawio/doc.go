// Package drawio builds draw.io diagram documents from computed layouts.
//
// [Serialize] maps every node of a [layout.Layout] to a vertex cell
// ([Shape]) and every edge to an edge cell ([Connector]). The document is
// written as the uncompressed mxfile XML that draw.io opens directly:
//
//	<mxfile host="dotdraw" agent="dotdraw/v1.0.0">
//	  <diagram id="..." name="deps">
//	    <mxGraphModel pageWidth="300" pageHeight="380" ...>
//	      <root>
//	        <mxCell id="0"/>
//	        <mxCell id="1" parent="0"/>
//	        <mxCell id="node-0" value="app" style="rounded=0;whiteSpace=wrap;" vertex="1" parent="1">
//	          <mxGeometry x="90" y="20" width="120" height="60" as="geometry"/>
//	        </mxCell>
//	        ...
//
// # Identifiers
//
// Shape ids are "node-<index>" and connector ids "edge-<index>", using the
// graph's insertion indices. The diagram id is a name-based UUID of the
// graph name. Together with the optional [Options.Modified] timestamp this
// makes the output a pure function of the layout: serializing the same
// layout twice gives identical bytes.
//
// # Styles
//
// Shape hints choose the draw.io shape (rectangle, ellipse, rhombus or
// text), and the fillcolor, color and fontcolor attributes become
// fillColor, strokeColor and fontColor. html=1 is set only for HTML labels.
package drawio
