// Package transform composes model-view and projection matrix stacks into the
// combined matrices a rendering pipeline consumes.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl32/matstack"

	"github.com/Faultbox/trimesh/pkg/math"
)

// Stack is a read-only handle to the top of a matrix stack.
type Stack interface {
	Top() math.Mat4
}

// MatrixStack is an OpenGL-style matrix stack. It always holds at least one
// matrix, initially the identity.
type MatrixStack struct {
	stack *matstack.MatStack
}

// NewMatrixStack returns a stack holding a single identity matrix.
func NewMatrixStack() *MatrixStack {
	return &MatrixStack{stack: matstack.NewMatStack()}
}

// Push duplicates the top matrix.
func (s *MatrixStack) Push() {
	s.stack.Push()
}

// Pop discards the top matrix. The last matrix cannot be popped.
func (s *MatrixStack) Pop() error {
	return s.stack.Pop()
}

// Load replaces the top matrix.
func (s *MatrixStack) Load(m math.Mat4) {
	s.stack.Load(mgl32.Mat4(m))
}

// LoadIdentity replaces the top matrix with the identity.
func (s *MatrixStack) LoadIdentity() {
	s.stack.LoadIdent()
}

// Mul post-multiplies the top matrix: top = top * m. With column vectors, m is
// applied to geometry before the existing top.
func (s *MatrixStack) Mul(m math.Mat4) {
	s.stack.RightMul(mgl32.Mat4(m))
}

// Top returns the current top matrix.
func (s *MatrixStack) Top() math.Mat4 {
	return math.Mat4(s.stack.Peek())
}

// Depth returns the number of matrices on the stack.
func (s *MatrixStack) Depth() int {
	return len(*s.stack)
}
