package sqlite

type Option func(*SQLite)

func MaxOpenConns(n int) Option {
	return func(s *SQLite) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// BusyTimeout is in milliseconds.
func BusyTimeout(ms int) Option {
	return func(s *SQLite) {
		s.busyTimeout = ms
	}
}
