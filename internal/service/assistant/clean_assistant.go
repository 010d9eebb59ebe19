package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
)

// Clear forgets every uploaded file and the whole conversation, then deletes
// the stored files. The in-memory reset always happens; disk removal
// failures are logged and returned wrapped in ErrStorage.
func (s *Service) Clear(ctx context.Context) (int, error) {
	removed := s.store.Reset()

	var failures []error
	deleted := 0
	for _, f := range removed {
		if err := os.Remove(f.StoredPath); err != nil && !os.IsNotExist(err) {
			log.Printf("remove file %s failed: %v", f.StoredPath, err)
			failures = append(failures, err)
			continue
		}
		deleted++
	}
	if len(failures) > 0 {
		return deleted, fmt.Errorf("%w: %d file(s) not removed: %w", ErrStorage, len(failures), errors.Join(failures...))
	}
	return deleted, nil
}
