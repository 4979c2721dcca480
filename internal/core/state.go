package core

// GesturePhase tracks where a pointer gesture is in its lifecycle.
type GesturePhase int

const (
	GestureIdle GesturePhase = iota
	GestureDragging
	GestureSettling
)

func (p GesturePhase) String() string {
	switch p {
	case GestureIdle:
		return "idle"
	case GestureDragging:
		return "dragging"
	case GestureSettling:
		return "settling"
	}
	return "unknown"
}

// Direction is a discrete navigation direction.
type Direction int

const (
	DirNext Direction = iota
	DirPrev
)

func (d Direction) String() string {
	if d == DirPrev {
		return "prev"
	}
	return "next"
}
