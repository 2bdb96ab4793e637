package transform

import (
	"testing"

	"github.com/Faultbox/trimesh/pkg/math"
)

func mat4Close(a, b math.Mat4) bool {
	for i := range a {
		if !math.CloseEnough(a[i], b[i], 1e-5) {
			return false
		}
	}
	return true
}

func TestMatrixStack_StartsAtIdentity(t *testing.T) {
	s := NewMatrixStack()
	if s.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", s.Depth())
	}
	if s.Top() != math.Identity() {
		t.Errorf("expected identity top, got %v", s.Top())
	}
}

func TestMatrixStack_PushPop(t *testing.T) {
	s := NewMatrixStack()
	s.Load(math.Translate(1, 2, 3))
	s.Push()
	if s.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", s.Depth())
	}
	if s.Top() != math.Translate(1, 2, 3) {
		t.Error("push should duplicate the top")
	}

	s.Mul(math.Scale(2, 2, 2))
	want := math.Translate(1, 2, 3).Mul(math.Scale(2, 2, 2))
	if !mat4Close(s.Top(), want) {
		t.Errorf("expected %v, got %v", want, s.Top())
	}

	if err := s.Pop(); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if s.Top() != math.Translate(1, 2, 3) {
		t.Error("pop should restore the previous top")
	}
	if err := s.Pop(); err == nil {
		t.Error("expected error popping the last matrix")
	}
	if s.Depth() != 1 {
		t.Errorf("expected depth 1 after failed pop, got %d", s.Depth())
	}
}

func TestMatrixStack_LoadIdentity(t *testing.T) {
	s := NewMatrixStack()
	s.Load(math.Scale(3, 3, 3))
	s.LoadIdentity()
	if s.Top() != math.Identity() {
		t.Errorf("expected identity, got %v", s.Top())
	}
}

func TestGeometryTransform_Unbound(t *testing.T) {
	var g GeometryTransform
	if g.ModelViewProjection() != math.Identity() {
		t.Error("unbound stacks should give an identity MVP")
	}
	if g.NormalMatrix(true) != math.Identity3() {
		t.Error("unbound stacks should give an identity normal matrix")
	}
}

func TestGeometryTransform_ModelViewProjection(t *testing.T) {
	mv := NewMatrixStack()
	proj := NewMatrixStack()
	mv.Load(math.Translate(0, 0, -5))
	proj.Load(math.Scale(2, 3, -1))

	var g GeometryTransform
	g.SetStacks(mv, proj)

	want := math.Scale(2, 3, -1).Mul(math.Translate(0, 0, -5))
	if got := g.ModelViewProjection(); !mat4Close(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGeometryTransform_TracksStackChanges(t *testing.T) {
	mv := NewMatrixStack()
	proj := NewMatrixStack()

	var g GeometryTransform
	g.SetModelViewStack(mv)
	g.SetProjectionStack(proj)

	if g.ModelViewProjection() != math.Identity() {
		t.Fatal("expected identity before any change")
	}

	mv.Push()
	mv.Mul(math.Translate(4, 0, 0))
	got := g.ModelViewProjection().TransformVec3(math.Vec3{})
	if !got.CloseTo(math.Vec3{X: 4}, 1e-6) {
		t.Errorf("expected origin to move to (4,0,0), got %v", got)
	}

	if err := mv.Pop(); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if g.ModelViewProjection() != math.Identity() {
		t.Error("expected identity after pop")
	}
}

func TestGeometryTransform_MultiplicationOrder(t *testing.T) {
	mv := NewMatrixStack()
	proj := NewMatrixStack()
	mv.Load(math.Translate(1, 0, 0))
	proj.Load(math.Scale(2, 2, 2))

	var g GeometryTransform
	g.SetStacks(mv, proj)

	// projection * modelView: translate first, then scale.
	got := g.ModelViewProjection().TransformVec3(math.Vec3{})
	if !got.CloseTo(math.Vec3{X: 2}, 1e-6) {
		t.Errorf("expected (2,0,0), got %v", got)
	}
}

func TestGeometryTransform_NormalMatrix(t *testing.T) {
	tests := []struct {
		name      string
		modelView math.Mat4
		normalize bool
		in        math.Vec3
		want      math.Vec3
	}{
		{
			name:      "translation ignored",
			modelView: math.Translate(5, 6, 7),
			in:        math.Vec3{Y: 1},
			want:      math.Vec3{Y: 1},
		},
		{
			name:      "scale kept without normalize",
			modelView: math.Scale(3, 3, 3),
			in:        math.Vec3{X: 1},
			want:      math.Vec3{X: 3},
		},
		{
			name:      "scale removed with normalize",
			modelView: math.Scale(3, 3, 3),
			normalize: true,
			in:        math.Vec3{X: 1},
			want:      math.Vec3{X: 1},
		},
		{
			name:      "rotation applied",
			modelView: math.RotateZ(1.5707964),
			normalize: true,
			in:        math.Vec3{X: 1},
			want:      math.Vec3{Y: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mv := NewMatrixStack()
			mv.Load(tt.modelView)

			var g GeometryTransform
			g.SetModelViewStack(mv)

			got := g.NormalMatrix(tt.normalize).MulVec3(tt.in)
			if !got.CloseTo(tt.want, 1e-5) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGeometryTransform_CustomStack(t *testing.T) {
	var g GeometryTransform
	g.SetModelViewStack(fixedStack(math.Scale(2, 1, 1)))

	if got := g.ModelView(); got != math.Scale(2, 1, 1) {
		t.Errorf("expected custom stack top, got %v", got)
	}
	if got := g.Projection(); got != math.Identity() {
		t.Errorf("expected identity projection, got %v", got)
	}
}

type fixedStack math.Mat4

func (f fixedStack) Top() math.Mat4 { return math.Mat4(f) }
