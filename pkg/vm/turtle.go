package vm

// Point is one vertex of the turtle's polyline.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Turtle is the drawing cursor driven by OpMove and OpRotate. Points always
// starts with the origin.
type Turtle struct {
	Heading float64 // radians, within one full turn of zero
	Pos     Point
	Points  []Point

	capacity int
}

func NewTurtle(capacity int) *Turtle {
	t := &Turtle{capacity: capacity}
	t.Reset()
	return t
}

// Reset puts the turtle back at the origin facing heading zero with a
// single-point buffer.
func (t *Turtle) Reset() {
	t.Heading = 0
	t.Pos = Point{}
	t.Points = append(t.Points[:0], t.Pos)
}

// Move advances by distance along the heading and records the new position.
func (t *Turtle) Move(distance float64) error {
	if len(t.Points) >= t.capacity {
		return ErrPointOverflow
	}
	t.Pos.X += distance * Cos(t.Heading)
	t.Pos.Y += distance * Sin(t.Heading)
	t.Points = append(t.Points, t.Pos)
	return nil
}

// Rotate turns by deg degrees. Positive angles turn counter-clockwise on a
// y-down surface.
func (t *Turtle) Rotate(deg float64) {
	t.Heading = remf(t.Heading-Radians(deg), 2*Pi)
}
