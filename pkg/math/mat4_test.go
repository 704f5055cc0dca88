package math

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestIdentity(t *testing.T) {
	m := Identity()
	p := Vec3{1, 2, 3}
	if got := m.TransformPoint(p); got != p {
		t.Errorf("Identity.TransformPoint() = %v, want %v", got, p)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("Translate.TransformPoint() = %v, want %v", got, want)
	}
	if m.Translation() != (Vec3{10, 20, 30}) {
		t.Errorf("Translation() = %v", m.Translation())
	}
}

func TestScale(t *testing.T) {
	got := Scale(2, 3, 4).TransformPoint(Vec3{1, 1, 1})
	want := Vec3{2, 3, 4}
	if got != want {
		t.Errorf("Scale.TransformPoint() = %v, want %v", got, want)
	}
}

func TestRotateY(t *testing.T) {
	got := RotateY(math.Pi / 2).TransformPoint(Vec3{1, 0, 0})
	want := Vec3{0, 0, -1}
	if got.Sub(want).Length() > eps {
		t.Errorf("RotateY(90).TransformPoint() = %v, want %v", got, want)
	}
}

func TestRotateEulerOrder(t *testing.T) {
	// X first, then Z: +Y goes to +Z under X(90), Z(90) leaves it there.
	got := RotateEuler(Vec3{90, 0, 90}).TransformPoint(Vec3{0, 1, 0})
	want := Vec3{0, 0, 1}
	if got.Sub(want).Length() > eps {
		t.Errorf("RotateEuler().TransformPoint() = %v, want %v", got, want)
	}
}

func TestCompose(t *testing.T) {
	m := Compose(Vec3{1, 0, 0}, RotateZ(math.Pi/2), Vec3{2, 2, 2})
	got := m.TransformPoint(Vec3{1, 0, 0})
	want := Vec3{1, 2, 0}
	if got.Sub(want).Length() > eps {
		t.Errorf("Compose().TransformPoint() = %v, want %v", got, want)
	}
}

func TestMatMul(t *testing.T) {
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec3{12, 2, 2}
	if got != want {
		t.Errorf("(T*S).TransformPoint() = %v, want %v", got, want)
	}
}

func TestRow(t *testing.T) {
	m := Translate(5, 6, 7)
	if got := m.Row(0); got != [4]float64{1, 0, 0, 5} {
		t.Errorf("Row(0) = %v", got)
	}
	if got := m.Row(3); got != [4]float64{0, 0, 0, 1} {
		t.Errorf("Row(3) = %v", got)
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"translate", Translate(1, -2, 3)},
		{"scale", Scale(2, 4, 8)},
		{"trs", Compose(Vec3{3, 4, 5}, RotateEuler(Vec3{10, 20, 30}), Vec3{1, 2, 3})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.Mul(tt.m.Inverse())
			if !got.ApproxEqual(Identity(), eps) {
				t.Errorf("m * m^-1 = %v, want identity", got)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	if got := (Mat4{}).Inverse(); got != Identity() {
		t.Errorf("singular Inverse() = %v, want identity", got)
	}
}
