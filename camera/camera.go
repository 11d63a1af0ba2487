// Package camera provides the orbit camera used to view the particle field.
package camera

import "math"

const maxPitch = math.Pi/2 - 0.01

// Camera orbits the origin at a given distance. Input adds angular
// velocity which decays by Damping each update.
type Camera struct {
	// Yaw rotates about the vertical axis, Pitch tilts above or below the
	// horizon, both in radians. Yaw 0, Pitch 0 looks down -Z from +Z.
	Yaw, Pitch float32

	// Distance from the origin
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Vertical field of view in degrees
	FOV float32

	// Fraction of pending motion applied (and removed) per update.
	// 0 disables damping: input applies immediately.
	Damping float32

	yawVel, pitchVel float32
	home             float32
}

// New creates a camera on the +Z axis.
func New(distance, minDistance, maxDistance, fov, damping float32) *Camera {
	if minDistance <= 0 {
		minDistance = 0.1
	}
	if maxDistance < minDistance {
		maxDistance = minDistance
	}
	c := &Camera{
		MinDistance: minDistance,
		MaxDistance: maxDistance,
		FOV:         fov,
		Damping:     clamp(damping, 0, 1),
		home:        clamp(distance, minDistance, maxDistance),
	}
	c.Distance = c.home
	return c
}

// Rotate queues an orbit by the given angles.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.yawVel += dYaw
	c.pitchVel += dPitch
}

// ZoomBy multiplies the distance by factor, clamped to min/max.
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance = clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// Update applies pending rotation.
func (c *Camera) Update() {
	step := c.Damping
	if step == 0 {
		step = 1
	}
	c.Yaw = wrapAngle(c.Yaw + c.yawVel*step)
	c.Pitch = clamp(c.Pitch+c.pitchVel*step, -maxPitch, maxPitch)
	c.yawVel *= 1 - step
	c.pitchVel *= 1 - step
}

// Settled reports whether no rotation is pending.
func (c *Camera) Settled() bool {
	return absf(c.yawVel) < 1e-5 && absf(c.pitchVel) < 1e-5
}

// Position returns the camera's world position.
func (c *Camera) Position() (x, y, z float32) {
	yaw, pitch := float64(c.Yaw), float64(c.Pitch)
	d := float64(c.Distance)
	x = float32(d * math.Cos(pitch) * math.Sin(yaw))
	y = float32(d * math.Sin(pitch))
	z = float32(d * math.Cos(pitch) * math.Cos(yaw))
	return x, y, z
}

// Depth returns the distance along the view axis from the camera to a
// world point. Positive values are in front of the camera.
func (c *Camera) Depth(px, py, pz float32) float32 {
	cx, cy, cz := c.Position()
	// The camera looks at the origin, so the forward axis is -position.
	inv := 1 / c.Distance
	fx, fy, fz := -cx*inv, -cy*inv, -cz*inv
	return (px-cx)*fx + (py-cy)*fy + (pz-cz)*fz
}

// PixelSize returns the on-screen diameter in pixels of a point of world
// size at the given depth, for a viewport viewportH pixels tall.
func (c *Camera) PixelSize(size, depth, viewportH float32) float32 {
	if depth <= 0 {
		return 0
	}
	half := math.Tan(float64(c.FOV) * math.Pi / 360)
	return size * (viewportH / 2) / (depth * float32(half))
}

// Reset returns the camera to its initial orbit.
func (c *Camera) Reset() {
	c.Yaw, c.Pitch = 0, 0
	c.yawVel, c.pitchVel = 0, 0
	c.Distance = c.home
}

// wrapAngle maps a into [-pi, pi).
func wrapAngle(a float32) float32 {
	r := float32(math.Mod(float64(a)+math.Pi, 2*math.Pi))
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
