package ledger

import "time"

// SetNow overrides the service clock. Test hook only.
func (s *Service) SetNow(f func() time.Time) { s.now = f }
