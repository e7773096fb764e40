package sh

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/cmft/cubemap"
)

func TestEvalBasis5NormalizedDC(t *testing.T) {
	b := EvalBasis5([3]float32{0, 0, 1})
	want := 0.282095
	if diff := math64Abs(b[0] - want); diff > 1e-5 {
		t.Fatalf("band0 basis = %v, want %v", b[0], want)
	}
}

func TestProjectCubemapConstantEnvironment(t *testing.T) {
	normals := cubemap.BuildNormalTable(8, cubemap.FixupNone)

	radiance := [3]float32{1, 1, 1}
	coeffs := ProjectCubemap(normals, func(f cubemap.Face, x, y int) [3]float32 {
		return radiance
	})

	// A constant environment should project almost entirely onto the DC
	// term: coeffs[0] ~= radiance * 4*pi * k0 (= radiance * 2*sqrt(pi)),
	// all other bands ~0.
	expectedDC := float64(radiance[0]) * 4 * math.Pi * k0
	if diff := math64Abs(coeffs[0][0] - expectedDC); diff > 0.05*math64Abs(expectedDC) {
		t.Fatalf("coeffs[0][0] = %v, want approx %v", coeffs[0][0], expectedDC)
	}

	for k := 1; k < NumCoefficients; k++ {
		for c := 0; c < 3; c++ {
			if math64Abs(coeffs[k][c]) > 0.05*float64(radiance[c]) {
				t.Fatalf("coeffs[%d][%d] = %v, expected near zero for constant environment", k, c, coeffs[k][c])
			}
		}
	}
}

func TestIrradianceOfConstantEnvironmentIsDirectionIndependent(t *testing.T) {
	normals := cubemap.BuildNormalTable(8, cubemap.FixupNone)
	radiance := [3]float32{2, 2, 2}
	coeffs := ProjectCubemap(normals, func(f cubemap.Face, x, y int) [3]float32 {
		return radiance
	})

	a := Irradiance(coeffs, [3]float32{0, 1, 0})
	b := Irradiance(coeffs, [3]float32{1, 0, 0})

	if math32Abs(a[0]-b[0]) > 0.05*math32Abs(a[0]) {
		t.Fatalf("irradiance should be near direction-independent for a constant environment: %v vs %v", a, b)
	}
}

func math32Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func math64Abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
