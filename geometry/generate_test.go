package geometry

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

func allShapes() []Shape {
	return append(Shapes(), Shape(99))
}

func TestGenerateCountAndFinite(t *testing.T) {
	counts := []int{1, 7, 1000}

	for _, shape := range allShapes() {
		for _, count := range counts {
			rng := rand.New(rand.NewSource(1))
			pos, err := Generate(shape, count, rng)
			if err != nil {
				t.Fatalf("%v/%d: unexpected error %v", shape, count, err)
			}
			if len(pos) != count*3 {
				t.Errorf("%v/%d: got %d floats, want %d", shape, count, len(pos), count*3)
			}
			for i, v := range pos {
				f := float64(v)
				if math.IsNaN(f) || math.IsInf(f, 0) {
					t.Fatalf("%v/%d: non-finite value %v at %d", shape, count, v, i)
				}
			}
		}
	}
}

func TestGenerateRejectsNonPositiveCount(t *testing.T) {
	for _, count := range []int{0, -3} {
		_, err := Generate(Heart, count, rand.New(rand.NewSource(1)))
		if !errors.Is(err, ErrInvalidCount) {
			t.Errorf("count %d: got err %v, want ErrInvalidCount", count, err)
		}
	}
}

func TestGenerateNilRNG(t *testing.T) {
	pos, err := Generate(Flower, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != 30 {
		t.Errorf("got %d floats, want 30", len(pos))
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	a, _ := Generate(Buddha, 500, rand.New(rand.NewSource(7)))
	b, _ := Generate(Buddha, 500, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenerateCallsDiffer(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a, _ := Generate(Saturn, 2000, rng)
	b, _ := Generate(Saturn, 2000, rng)

	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	if same == len(a) {
		t.Fatal("two generations produced identical clouds")
	}

	// ...but their ring distributions match
	ma := ringMeanRadius(a, 2000)
	mb := ringMeanRadius(b, 2000)
	if math.Abs(ma-mb) > 0.2 {
		t.Errorf("ring mean radii differ too much: %.3f vs %.3f", ma, mb)
	}
}

func ringMeanRadius(pos []float32, count int) float64 {
	start := saturnPlanetCount(count)
	radii := make([]float64, 0, count-start)
	for i := start; i < count; i++ {
		radii = append(radii, radius(pos, i))
	}
	return stat.Mean(radii, nil)
}

func radius(pos []float32, i int) float64 {
	return r3.Norm(r3.Vec{X: float64(pos[i*3]), Y: float64(pos[i*3+1]), Z: float64(pos[i*3+2])})
}

func TestSaturnRingMeanRadius(t *testing.T) {
	const count = 20000
	pos, err := Generate(Saturn, count, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}

	mean := ringMeanRadius(pos, count)
	if math.Abs(mean-6.5) > 0.1 {
		t.Errorf("ring mean radius = %.3f, want 6.5 +/- 0.1", mean)
	}

	// Every ring particle stays inside the annulus (thickness adds < 0.1)
	start := saturnPlanetCount(count)
	for i := start; i < count; i++ {
		r := radius(pos, i)
		if r < saturnRingInner-0.01 || r > saturnRingInner+saturnRingWidth+0.11 {
			t.Fatalf("ring particle %d at radius %.3f outside annulus", i, r)
		}
	}

	// Planet particles stay inside radius 3
	for i := 0; i < start; i++ {
		if r := radius(pos, i); r > saturnPlanetR+1e-4 {
			t.Fatalf("planet particle %d at radius %.3f", i, r)
		}
	}
}

// cosPolar returns cos(phi) = z/r for every point with non-zero radius.
func cosPolar(pos []float32, from, to int) []float64 {
	out := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		r := radius(pos, i)
		if r == 0 {
			continue
		}
		out = append(out, float64(pos[i*3+2])/r)
	}
	return out
}

// uniformGrid returns n sorted values evenly spread over [-1, 1].
func uniformGrid(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = -1 + 2*(float64(i)+0.5)/float64(n)
	}
	return out
}

func assertUniformCosine(t *testing.T, cos []float64) {
	t.Helper()
	sort.Float64s(cos)

	d := stat.KolmogorovSmirnov(cos, nil, uniformGrid(len(cos)), nil)
	if d > 0.03 {
		t.Errorf("KS distance from uniform cos(phi) = %.4f, want <= 0.03", d)
	}

	// Poles must not be oversampled: each tenth of [-1, 1] holds ~10%
	var bins [10]int
	for _, c := range cos {
		b := int((c + 1) / 2 * 10)
		if b == 10 {
			b = 9
		}
		bins[b]++
	}
	expected := float64(len(cos)) / 10
	for i, n := range bins {
		if math.Abs(float64(n)-expected) > expected*0.15 {
			t.Errorf("bin %d holds %d samples, want %.0f +/- 15%%", i, n, expected)
		}
	}
}

func TestFireworksPolarAngleUniformInCosine(t *testing.T) {
	const count = 10000
	pos, err := Generate(Fireworks, count, rand.New(rand.NewSource(21)))
	if err != nil {
		t.Fatal(err)
	}
	assertUniformCosine(t, cosPolar(pos, 0, count))
}

func TestSaturnPlanetPolarAngleUniformInCosine(t *testing.T) {
	// 34000 particles puts 10200 in the planet
	const count = 34000
	pos, err := Generate(Saturn, count, rand.New(rand.NewSource(22)))
	if err != nil {
		t.Fatal(err)
	}
	planet := saturnPlanetCount(count)
	assertUniformCosine(t, cosPolar(pos, 0, planet))
}

func TestNaiveSamplingFailsUniformity(t *testing.T) {
	// Guards the check itself: uniform phi clusters at the poles.
	rng := rand.New(rand.NewSource(5))
	cos := make([]float64, 10000)
	for i := range cos {
		cos[i] = math.Cos(rng.Float64() * math.Pi)
	}
	sort.Float64s(cos)
	if d := stat.KolmogorovSmirnov(cos, nil, uniformGrid(len(cos)), nil); d < 0.07 {
		t.Errorf("naive sampling KS distance = %.4f, expected a clear failure", d)
	}
}

func TestShapeBounds(t *testing.T) {
	tests := []struct {
		shape Shape
		check func(x, y, z float64) bool
		desc  string
	}{
		{Heart, func(x, y, z float64) bool { return math.Abs(x) <= 8.0001 && math.Abs(z) <= 2.5001 }, "|x|<=8, |z|<=2.5"},
		{Flower, func(x, y, z float64) bool { return math.Sqrt(x*x+y*y+z*z) <= 5.5001 }, "r<=5.5"},
		{Fireworks, func(x, y, z float64) bool { return math.Sqrt(x*x+y*y+z*z) <= 8.0001 }, "r<=8"},
		{Buddha, func(x, y, z float64) bool { return y >= -2.5001 && y <= 4.2001 && math.Hypot(x, z) <= 3.5001 }, "seated figure box"},
		{Shape(42), func(x, y, z float64) bool {
			return math.Abs(x) <= 5 && math.Abs(y) <= 5 && math.Abs(z) <= 5
		}, "cube [-5,5]"},
	}

	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			pos, err := Generate(tt.shape, 5000, rand.New(rand.NewSource(9)))
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 5000; i++ {
				x, y, z := float64(pos[i*3]), float64(pos[i*3+1]), float64(pos[i*3+2])
				if !tt.check(x, y, z) {
					t.Fatalf("particle %d (%.3f, %.3f, %.3f) violates %s", i, x, y, z, tt.desc)
				}
			}
		})
	}
}

func TestHeartBoundaryDensity(t *testing.T) {
	// r = u^0.3 pushes most particles toward the outline
	const count = 20000
	pos, _ := Generate(Heart, count, rand.New(rand.NewSource(13)))
	var far int
	for i := 0; i < count; i++ {
		if radius(pos, i) > 4 {
			far++
		}
	}
	if float64(far)/count < 0.4 {
		t.Errorf("only %.2f of heart particles beyond radius 4, expected an outline-heavy cloud", float64(far)/count)
	}
}
