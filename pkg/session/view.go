package session

import "github.com/aretw0/welllit/pkg/domain"

// Active reports whether a protocol is loaded.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proto != nil
}

// Snapshot returns the cursor view; false when no protocol is loaded.
func (s *Session) Snapshot() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return domain.Snapshot{}, false
	}
	return s.proto.Snapshot(), true
}

// Finished reports whether the active protocol's last plate was committed.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proto != nil && s.proto.Finished()
}

func (s *Session) Partitions() domain.Partitions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return domain.Partitions{}
	}
	return s.proto.Partitions()
}

func (s *Session) Plates() []domain.PlateGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return nil
	}
	return s.proto.Plates()
}

// Transfers returns copies of every transfer in sequence order.
func (s *Session) Transfers() []domain.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return nil
	}
	return s.proto.Transfers()
}

// Records returns the current record log.
func (s *Session) Records() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return nil
	}
	return s.proto.Records()
}

// Run returns the descriptor of the active run (zero when none).
func (s *Session) Run() domain.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// Table returns the table the active protocol was built from.
func (s *Session) Table() (domain.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto == nil {
		return domain.Table{}, false
	}
	t := s.table
	t.Rows = append([]domain.Row(nil), s.table.Rows...)
	return t, true
}
