package retry

type Option func(*Scheduler)

// WithSleep replaces the timer-based wait, e.g. with a fake clock in tests.
func WithSleep(f SleepFunc) Option {
	return func(s *Scheduler) {
		if f != nil {
			s.sleep = f
		}
	}
}

func WithNotify(f NotifyFunc) Option {
	return func(s *Scheduler) {
		s.notify = f
	}
}
