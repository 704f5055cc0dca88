package host

import "fmt"

// TimeScope remembers the host time at creation so it can be put back
// after sampling. Use it with defer:
//
//	scope := host.EnterTime(s)
//	defer scope.Restore()
type TimeScope struct {
	scene Scene
	saved float64
	moved bool
}

// EnterTime records the current host time.
func EnterTime(s Scene) *TimeScope {
	return &TimeScope{scene: s, saved: s.CurrentTime()}
}

// Set moves the host to t.
func (ts *TimeScope) Set(t float64) error {
	if t == ts.scene.CurrentTime() {
		return nil
	}
	ts.moved = true
	if err := ts.scene.SetCurrentTime(t); err != nil {
		return fmt.Errorf("set time %g: %w", t, err)
	}
	return nil
}

// Saved returns the time recorded by EnterTime.
func (ts *TimeScope) Saved() float64 {
	return ts.saved
}

// Restore puts the host back at the recorded time. It is a no-op when Set
// never moved the host.
func (ts *TimeScope) Restore() error {
	if !ts.moved {
		return nil
	}
	ts.moved = false
	if err := ts.scene.SetCurrentTime(ts.saved); err != nil {
		return fmt.Errorf("restore time %g: %w", ts.saved, err)
	}
	return nil
}
