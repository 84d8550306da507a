package clock

// seekCoordinator tracks whether a seek is in flight.
//
// A seek is modeled as two explicit points in time (start and end), so
// "is a seek in flight" is always a crisp boolean. Duplicate starts and
// orphaned ends are protocol-level no-ops, not errors.
type seekCoordinator struct {
	active bool
}

// begin enters the active state. Returns false if a seek is already active.
func (s *seekCoordinator) begin() bool {
	if s.active {
		return false
	}
	s.active = true
	return true
}

// end leaves the active state. Returns false if no seek was active.
func (s *seekCoordinator) end() bool {
	if !s.active {
		return false
	}
	s.active = false
	return true
}

// reset unconditionally returns to idle.
func (s *seekCoordinator) reset() {
	s.active = false
}
