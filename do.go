package cond

// Action is the unit-typed counterpart of Clause: a condition paired with a
// side-effecting body instead of a value.
type Action struct {
	cond func() bool
	run  func()
}

// If builds a conditional action.
func If(cond func() bool, run func()) Action {
	return Action{cond: cond, run: run}
}

// Otherwise builds the fallback action, run when no condition holds.
// Like Default, it must come last.
func Otherwise(run func()) Action {
	return Action{run: run}
}

// Do evaluates action conditions in order and runs the body of the first one
// that holds. Nothing after the match is evaluated. With no match and no
// Otherwise, Do does nothing; no fallback is required for unit dispatch.
func Do(actions ...Action) {
	var def func()
	for _, a := range actions {
		if a.cond == nil {
			def = a.run
			continue
		}
		if a.cond() {
			a.run()
			return
		}
	}
	if def != nil {
		def()
	}
}
