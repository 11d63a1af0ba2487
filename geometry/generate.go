package geometry

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrInvalidCount is returned when a formation is requested with no particles.
var ErrInvalidCount = errors.New("geometry: particle count must be positive")

// Saturn layout
const (
	saturnPlanetShare = 0.3
	saturnPlanetR     = 3.0
	saturnRingInner   = 4.5
	saturnRingWidth   = 4.0
	saturnRingHeight  = 0.2
	saturnTilt        = math.Pi / 6
)

// Buddha layout (cumulative probabilities)
const (
	buddhaHeadP  = 0.15
	buddhaTorsoP = 0.55
)

// Generate returns 3*count interleaved positions (x0, y0, z0, x1, ...) for
// the given shape. The rng is the only state touched; pass nil to use a
// fresh time-seeded source. Unknown shapes produce a uniform cube cloud.
func Generate(shape Shape, count int, rng *rand.Rand) ([]float32, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	positions := make([]float32, count*3)
	planetCount := saturnPlanetCount(count)

	for i := 0; i < count; i++ {
		var x, y, z float64

		switch shape {
		case Heart:
			x, y, z = heartPoint(rng)
		case Flower:
			x, y, z = flowerPoint(rng)
		case Saturn:
			if i < planetCount {
				x, y, z = ballPoint(rng, saturnPlanetR)
			} else {
				x, y, z = ringPoint(rng)
			}
		case Buddha:
			x, y, z = buddhaPoint(rng)
		case Fireworks:
			x, y, z = ballPoint(rng, 8)
		default:
			x = (rng.Float64() - 0.5) * 10
			y = (rng.Float64() - 0.5) * 10
			z = (rng.Float64() - 0.5) * 10
		}

		idx := i * 3
		positions[idx] = float32(x)
		positions[idx+1] = float32(y)
		positions[idx+2] = float32(z)
	}

	return positions, nil
}

// saturnPlanetCount is the number of leading indices that form the planet.
func saturnPlanetCount(count int) int {
	return int(math.Ceil(float64(count) * saturnPlanetShare))
}

// heartPoint samples the parametric heart curve, biased toward the outline.
func heartPoint(rng *rand.Rand) (x, y, z float64) {
	const scale = 0.5
	t := rng.Float64() * 2 * math.Pi
	r := math.Pow(rng.Float64(), 0.3)
	sinT := math.Sin(t)
	x = scale * 16 * sinT * sinT * sinT * r
	y = scale * (13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)) * r
	z = (rng.Float64() - 0.5) * 5 * r
	return x, y, z
}

// flowerPoint samples a four-petal spherical rose.
func flowerPoint(rng *rand.Rand) (x, y, z float64) {
	const petals = 4
	u := rng.Float64() * 2 * math.Pi
	v := rng.Float64() * math.Pi
	r := math.Sin(petals*u)*math.Sin(v)*5 + (rng.Float64() - 0.5)
	x = r * math.Sin(u) * math.Sin(v)
	y = r * math.Cos(v)
	z = r * math.Cos(u) * math.Sin(v)
	return x, y, z
}

// ringPoint samples Saturn's tilted ring.
func ringPoint(rng *rand.Rand) (x, y, z float64) {
	angle := rng.Float64() * 2 * math.Pi
	dist := saturnRingInner + rng.Float64()*saturnRingWidth
	x = dist * math.Cos(angle)
	z = dist * math.Sin(angle)
	y = (rng.Float64() - 0.5) * saturnRingHeight

	sinT, cosT := math.Sincos(saturnTilt)
	y, z = y*cosT-z*sinT, y*sinT+z*cosT
	return x, y, z
}

// buddhaPoint samples one of head, torso or base.
func buddhaPoint(rng *rand.Rand) (x, y, z float64) {
	pick := rng.Float64()
	switch {
	case pick < buddhaHeadP:
		x, y, z = spherePoint(rng, 1.2)
		y += 3
	case pick < buddhaTorsoP:
		const radX, radY = 2.0, 2.5
		theta := rng.Float64() * 2 * math.Pi
		h := rng.Float64()*2 - 1
		w := math.Sqrt(1 - h*h)
		x = w * radX * math.Cos(theta)
		y = h * radY
		z = w * radX * math.Sin(theta)
	default:
		t := rng.Float64() * 2 * math.Pi
		rad := 3.5 * math.Sqrt(rng.Float64())
		x = rad * math.Cos(t)
		z = rad * math.Sin(t)
		y = -2.5 + rng.Float64()*1.5
	}
	return x, y, z
}

// ballPoint samples uniformly inside a sphere of the given radius.
func ballPoint(rng *rand.Rand, radius float64) (x, y, z float64) {
	return spherePoint(rng, radius*math.Cbrt(rng.Float64()))
}

// spherePoint samples uniformly on a sphere surface. The polar angle comes
// from the inverse CDF so cos(phi) is uniform and the poles are not oversampled.
func spherePoint(rng *rand.Rand, r float64) (x, y, z float64) {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	sinPhi := math.Sin(phi)
	x = r * sinPhi * math.Cos(theta)
	y = r * sinPhi * math.Sin(theta)
	z = r * math.Cos(phi)
	return x, y, z
}
