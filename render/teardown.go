package render

// teardownStack collects destroy closures in creation order and runs
// them in reverse, so adding a resource cannot silently miss the
// teardown sequence. Closures must tolerate being the only ones run
// (partial bootstrap).
type teardownStack struct {
	fns []func()
}

func (t *teardownStack) push(fn func()) {
	t.fns = append(t.fns, fn)
}

func (t *teardownStack) run() {
	for i := len(t.fns) - 1; i >= 0; i-- {
		t.fns[i]()
	}
	t.fns = nil
}
