package event

import "time"

// Vec3 is a world-space position or velocity. Velocities are units per second.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

// Advance returns v moved by vel over dt.
func (v Vec3) Advance(vel Vec3, dt time.Duration) Vec3 {
	return v.Add(vel.Scale(dt.Seconds()))
}
