package transform

import "github.com/Faultbox/trimesh/pkg/math"

// GeometryTransform reads a model-view and a projection stack and derives the
// model-view-projection and normal matrices from their current tops.
//
// It holds the stacks by reference and never copies or owns them; the caller
// keeps them alive for as long as the GeometryTransform is used. Unbound
// stacks read as identity.
type GeometryTransform struct {
	modelView  Stack
	projection Stack

	mvp    math.Mat4
	normal math.Mat3
}

// SetModelViewStack binds the model-view stack.
func (g *GeometryTransform) SetModelViewStack(s Stack) { g.modelView = s }

// SetProjectionStack binds the projection stack.
func (g *GeometryTransform) SetProjectionStack(s Stack) { g.projection = s }

// SetStacks binds both stacks.
func (g *GeometryTransform) SetStacks(modelView, projection Stack) {
	g.modelView = modelView
	g.projection = projection
}

// ModelView returns the top of the model-view stack.
func (g *GeometryTransform) ModelView() math.Mat4 {
	return top(g.modelView)
}

// Projection returns the top of the projection stack.
func (g *GeometryTransform) Projection() math.Mat4 {
	return top(g.projection)
}

// ModelViewProjection returns projection * modelView, recomputed from the
// current stack tops on every call.
func (g *GeometryTransform) ModelViewProjection() math.Mat4 {
	g.mvp = g.Projection().Mul(g.ModelView())
	return g.mvp
}

// NormalMatrix returns the upper 3x3 of the model-view matrix. With normalize
// set, each column is rescaled to unit length, which keeps lighting correct
// under scaling transforms.
func (g *GeometryTransform) NormalMatrix(normalize bool) math.Mat3 {
	g.normal = g.ModelView().Rotation()
	if normalize {
		g.normal = g.normal.NormalizeColumns()
	}
	return g.normal
}

func top(s Stack) math.Mat4 {
	if s == nil {
		return math.Identity()
	}
	return s.Top()
}
