package toggle

// Target list names.
const (
	ListInclude = "include"
	ListExclude = "exclude"
)

// AttrToggle on a control names the list a click toggles for the enclosing
// item.
const AttrToggle = "data-toggle"

// Attributes reflecting an item's state.
const (
	AttrIncluded = "data-included"
	AttrExcluded = "data-excluded"
	AttrBusy     = "aria-busy"
)

// State is an item's toggle state.
type State struct {
	Included bool
	Excluded bool
	Pending  bool
}

// Marked reports whether the mark for list is on.
func (s State) Marked(list string) bool {
	if list == ListInclude {
		return s.Included
	}
	return s.Excluded
}

// with returns s with list's mark set to on. Turning a mark on clears the
// other one.
func (s State) with(list string, on bool) State {
	switch list {
	case ListInclude:
		s.Included = on
		if on {
			s.Excluded = false
		}
	case ListExclude:
		s.Excluded = on
		if on {
			s.Included = false
		}
	}
	return s
}

// ValidList reports whether list names a target list.
func ValidList(list string) bool {
	return list == ListInclude || list == ListExclude
}
