// Package scene is a small retained-mode scene graph drawn with ebiten.
// Nodes carry a local transform and an optional texture, and receive
// pointer events routed by Scene.
package scene

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Node is an element of the scene tree.
type Node struct {
	Name string

	X, Y           float64
	ScaleX, ScaleY float64
	// Rotation is in radians.
	Rotation float64
	Visible  bool
	// Interactive nodes take part in pointer hit testing.
	Interactive bool

	parent   *Node
	children []*Node
	texture  *Texture
	handlers handlerRegistry

	destroyed bool
}

// NewNode returns a visible node with unit scale.
func NewNode(name string) *Node {
	return &Node{Name: name, ScaleX: 1, ScaleY: 1, Visible: true}
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the children in draw order.
func (n *Node) Children() []*Node { return n.children }

// AddChild appends c, detaching it from its previous parent.
func (n *Node) AddChild(c *Node) {
	if c == nil || c == n || n.destroyed {
		return
	}
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

// RemoveChild detaches c if it is a direct child.
func (n *Node) RemoveChild(c *Node) {
	for i, child := range n.children {
		if child == c {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			c.parent = nil
			return
		}
	}
}

// SetTexture sets the texture drawn at the node origin.
func (n *Node) SetTexture(t *Texture) { n.texture = t }

func (n *Node) Texture() *Texture { return n.texture }

// LocalGeoM is scale, then rotation, then translation.
func (n *Node) LocalGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Scale(n.ScaleX, n.ScaleY)
	if n.Rotation != 0 {
		g.Rotate(n.Rotation)
	}
	g.Translate(n.X, n.Y)
	return g
}

// WorldGeoM maps node-local coordinates to scene coordinates.
func (n *Node) WorldGeoM() ebiten.GeoM {
	g := n.LocalGeoM()
	if n.parent != nil {
		g.Concat(n.parent.WorldGeoM())
	}
	return g
}

// ToLocal maps a scene point into node-local coordinates. A degenerate
// transform returns the point unchanged.
func (n *Node) ToLocal(gx, gy float64) (float64, float64) {
	g := n.WorldGeoM()
	if !g.IsInvertible() {
		return gx, gy
	}
	g.Invert()
	return g.Apply(gx, gy)
}

// ToGlobal maps a node-local point into scene coordinates.
func (n *Node) ToGlobal(lx, ly float64) (float64, float64) {
	g := n.WorldGeoM()
	return g.Apply(lx, ly)
}

// Contains reports whether the scene point falls within the texture
// bounds of the node.
func (n *Node) Contains(gx, gy float64) bool {
	if n.texture == nil {
		return false
	}
	w, h := n.texture.Size()
	if w == 0 || h == 0 {
		return false
	}
	lx, ly := n.ToLocal(gx, gy)
	return lx >= 0 && lx < float64(w) && ly >= 0 && ly < float64(h)
}

// Destroyed reports whether Destroy was called.
func (n *Node) Destroyed() bool { return n.destroyed }

// Destroy detaches the node and drops its handlers. Children are detached
// but left intact. The texture is not disposed.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.handlers = handlerRegistry{}
	n.texture = nil
}
