package engine

import "github.com/roach88/hitwire/internal/geom"

// Object is one tracked entity: a stable id, the type binding it to a
// rule list, its bounding rectangle, and a free-form attribute bag the
// condition language reads from. The engine never mutates an object on
// its own - position and attributes change only through the host's
// UpdateObject calls.
type Object struct {
	ID    string
	Type  string
	Rect  geom.Rect
	Attrs map[string]any
}

// Attr reads one attribute. A nil bag or a missing name reads as
// (nil, false); conditions treat that as a non-match, never an error.
func (o *Object) Attr(name string) (any, bool) {
	if o.Attrs == nil {
		return nil, false
	}
	v, ok := o.Attrs[name]
	return v, ok
}

// SetAttr writes one attribute, allocating the bag on first use.
func (o *Object) SetAttr(name string, v any) {
	if o.Attrs == nil {
		o.Attrs = make(map[string]any)
	}
	o.Attrs[name] = v
}
