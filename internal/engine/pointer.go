package engine

import "github.com/roach88/hitwire/internal/geom"

// DeviceKind enumerates the physical input devices the platform detects
// hits from. The kind selects the pointer's hit rectangle size: a mouse
// click is a point, a laser spot is small, a thrown beanbag seen by the
// camera is large.
type DeviceKind string

const (
	DeviceMouse  DeviceKind = "mouse"
	DeviceFinger DeviceKind = "finger"
	DeviceThrown DeviceKind = "thrown"
	DeviceLaser  DeviceKind = "laser"
)

// deviceSizes maps each device kind to its default hit rectangle extent.
var deviceSizes = map[DeviceKind][2]float64{
	DeviceMouse:  {1, 1},
	DeviceFinger: {40, 40},
	DeviceThrown: {60, 60},
	DeviceLaser:  {8, 8},
}

// Pointer is the hit-detection pseudo-object. The host updates its
// position and activity once per frame before Evaluate; Active is true
// only during the frame of a press/click/hit and the host is expected
// to drop it back to false on the next update (a click is momentary).
type Pointer struct {
	X, Y   float64
	W, H   float64
	Active bool
}

// NewPointer creates a pointer sized for the given device kind. Unknown
// kinds get the mouse's point-sized rectangle.
func NewPointer(kind DeviceKind) *Pointer {
	size, ok := deviceSizes[kind]
	if !ok {
		size = deviceSizes[DeviceMouse]
	}
	return &Pointer{W: size[0], H: size[1]}
}

// Update moves the pointer and sets its activity for this frame.
func (p *Pointer) Update(x, y float64, active bool) {
	p.X, p.Y = x, y
	p.Active = active
}

// Resize overrides the hit rectangle extent, e.g. when the vision
// pipeline reports the detected object's actual size for this frame.
func (p *Pointer) Resize(w, h float64) {
	p.W, p.H = w, h
}

// Rect returns the hit rectangle, centered on the pointer position.
func (p *Pointer) Rect() geom.Rect {
	return geom.NewRect(p.X-p.W/2, p.Y-p.H/2, p.W, p.H)
}

// View materializes the pointer as a tracked-object view so the same
// condition language applies to it.
func (p *Pointer) View() *Object {
	return &Object{
		ID:   PseudoPointer,
		Type: PseudoPointer,
		Rect: p.Rect(),
		Attrs: map[string]any{
			"x":      p.X,
			"y":      p.Y,
			"active": p.Active,
		},
	}
}
