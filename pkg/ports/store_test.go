package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/ports"
)

// MockStore is a minimal in-memory RecordStore for checking the contract suite itself.
type MockStore struct {
	data map[string][]domain.Record
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]domain.Record),
	}
}

func (m *MockStore) WriteRecords(ctx context.Context, run domain.Run, records []domain.Record) error {
	m.data[run.ID] = append([]domain.Record{}, records...)
	return nil
}

func (m *MockStore) ReadRecords(ctx context.Context, runID string) ([]domain.Record, error) {
	recs, ok := m.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return recs, nil
}

func (m *MockStore) ListRuns(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, NewMockStore())
}

func TestTableReaderFunc(t *testing.T) {
	reader := ports.TableReaderFunc(func(ctx context.Context) (domain.Table, error) {
		return domain.Table{DestPlate: "DEST"}, nil
	})
	table, err := reader.ReadTable(context.Background())
	if err != nil || table.DestPlate != "DEST" {
		t.Fatalf("unexpected table %+v, err %v", table, err)
	}
}
