package progress

// Multi fans each event out to every non-nil handler, so the terminal
// renderer and the monitor hub can observe the same transfer.
func Multi(fns ...Func) Func {
	return func(e Event) {
		for _, fn := range fns {
			if fn != nil {
				fn(e)
			}
		}
	}
}
