package prefs

import "context"

// Backfill inserts a default preference for every (user, type) pair that has
// none and returns how many rows it added.
func (s *Service) Backfill(ctx context.Context) (int64, error) {
	n, err := s.prefs.Backfill(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("preferences backfilled", "inserted", n)
	}
	return n, nil
}
