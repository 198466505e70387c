package session

// SetEngine swaps the backend under a live session without rebuilding.
func (s *Session) SetEngine(eng Engine) { s.engine = eng }
