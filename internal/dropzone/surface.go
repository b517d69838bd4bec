package dropzone

// Element is a node of the drop surface. Known elements are interned per id,
// so two events naming the same element carry the same pointer.
type Element struct {
	id string
}

func (e *Element) ID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// Surface is the drop target: one root element and the descendants the page
// declared up front. The element set is fixed after NewSurface.
type Surface struct {
	root  *Element
	elems map[string]*Element
}

// NewSurface returns a surface whose root has rootID, with the given
// descendant ids.
func NewSurface(rootID string, descendants ...string) *Surface {
	root := &Element{id: rootID}
	s := &Surface{
		root:  root,
		elems: map[string]*Element{rootID: root},
	}
	for _, id := range descendants {
		if _, ok := s.elems[id]; !ok && id != "" {
			s.elems[id] = &Element{id: id}
		}
	}
	return s
}

func (s *Surface) Root() *Element { return s.root }

// Element returns the element for id. An empty id means the root. An id the
// surface does not know is still a descendant: it gets a fresh element that
// is never the root and is not remembered.
func (s *Surface) Element(id string) *Element {
	if id == "" {
		return s.root
	}
	if e, ok := s.elems[id]; ok {
		return e
	}
	return &Element{id: id}
}
