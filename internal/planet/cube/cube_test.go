package cube

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFaceAxesOrthonormal(t *testing.T) {
	for _, f := range Faces {
		n := f.Normal()
		a, b := f.Axes()

		if math.Abs(a.Dot(n)) > 1e-12 || math.Abs(b.Dot(n)) > 1e-12 || math.Abs(a.Dot(b)) > 1e-12 {
			t.Errorf("face %v: axes not orthogonal: n=%v a=%v b=%v", f, n, a, b)
		}
		if !a.Cross(b).ApproxEqual(n) {
			t.Errorf("face %v: axisA x axisB = %v, want normal %v", f, a.Cross(b), n)
		}
	}
}

func TestOpposite(t *testing.T) {
	for _, f := range Faces {
		sum := f.Normal().Add(f.Opposite().Normal())
		if sum.Len() != 0 {
			t.Errorf("face %v opposite %v: normals do not cancel", f, f.Opposite())
		}
	}
}

func TestToSphereUnitLength(t *testing.T) {
	for _, f := range Faces {
		for _, uv := range []mgl64.Vec2{{0, 0}, {1, 1}, {0.5, 0.5}, {0.25, 0.9}} {
			d := ToSphere(f, uv)
			if math.Abs(d.Len()-1) > 1e-12 {
				t.Errorf("ToSphere(%v, %v) length = %v, want 1", f, uv, d.Len())
			}
		}
	}
}

func TestFaceCenterIsNormal(t *testing.T) {
	for _, f := range Faces {
		d := ToSphere(f, mgl64.Vec2{0.5, 0.5})
		if !d.ApproxEqual(f.Normal()) {
			t.Errorf("centre of %v = %v, want %v", f, d, f.Normal())
		}
	}
}

func TestFromDirectionRoundTrip(t *testing.T) {
	coords := []mgl64.Vec2{{0.5, 0.5}, {0.1, 0.2}, {0.9, 0.3}, {0.01, 0.99}, {0.75, 0.75}}
	for _, f := range Faces {
		for _, uv := range coords {
			gotFace, gotUV := FromDirection(ToSphere(f, uv))
			if gotFace != f {
				t.Errorf("FromDirection(ToSphere(%v, %v)) face = %v", f, uv, gotFace)
				continue
			}
			if !gotUV.ApproxEqualThreshold(uv, 1e-9) {
				t.Errorf("FromDirection(ToSphere(%v, %v)) uv = %v", f, uv, gotUV)
			}
		}
	}
}

func TestFromDirectionScaleInvariant(t *testing.T) {
	dir := mgl64.Vec3{0.3, -2, 0.7}
	f1, uv1 := FromDirection(dir)
	f2, uv2 := FromDirection(dir.Mul(1000))
	if f1 != f2 || !uv1.ApproxEqual(uv2) {
		t.Errorf("scaled direction mapped differently: (%v,%v) vs (%v,%v)", f1, uv1, f2, uv2)
	}
	if f1 != NegY {
		t.Errorf("expected -Y face, got %v", f1)
	}
}

func TestSafeNormalizeDegenerate(t *testing.T) {
	tests := []mgl64.Vec3{
		{0, 0, 0},
		{1e-20, 0, 0},
		{math.NaN(), 0, 0},
		{math.Inf(1), 0, 0},
	}
	for _, v := range tests {
		if got := SafeNormalize(v); got != Up {
			t.Errorf("SafeNormalize(%v) = %v, want Up", v, got)
		}
	}

	face, uv := FromDirection(mgl64.Vec3{})
	if face != PosY || !uv.ApproxEqual(mgl64.Vec2{0.5, 0.5}) {
		t.Errorf("FromDirection(zero) = (%v, %v), want (+Y, centre)", face, uv)
	}
}

func TestFaceString(t *testing.T) {
	if PosX.String() != "+X" || NegZ.String() != "-Z" {
		t.Errorf("unexpected names %q %q", PosX.String(), NegZ.String())
	}
	if Face(9).Valid() {
		t.Error("Face(9) should be invalid")
	}
}
