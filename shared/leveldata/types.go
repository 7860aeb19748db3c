// Package leveldata provides arena layouts shared between client and server.
// It has no dependencies on the physics or network packages.
package leveldata

// Platform is a static rectangle: center X/Y plus half extents W/H. It is sent
// to clients verbatim in the welcome message.
type Platform struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	W float64 `json:"w" msgpack:"w"`
	H float64 `json:"h" msgpack:"h"`
}

// Point is a world position.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Layout holds everything a room needs to build its static world.
type Layout struct {
	Name      string
	Platforms []Platform
	Spawn     Point
}

// Default returns the built-in seven platform arena with the spawn point at
// the origin. Y grows downward.
func Default() Layout {
	return Layout{
		Name: "arena",
		Platforms: []Platform{
			{X: 0, Y: 290, W: 400, H: 10},
			{X: -300, Y: 200, W: 60, H: 10},
			{X: 200, Y: 200, W: 60, H: 10},
			{X: 0, Y: 100, W: 90, H: 10},
			{X: -250, Y: -50, W: 50, H: 10},
			{X: 250, Y: -50, W: 50, H: 10},
			{X: 0, Y: -150, W: 75, H: 10},
		},
		Spawn: Point{X: 0, Y: 0},
	}
}

// Clone returns a copy whose platform slice can be handed out safely.
func (l Layout) Clone() Layout {
	out := l
	out.Platforms = append([]Platform(nil), l.Platforms...)
	return out
}
