package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/welllit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore
// implementation adheres to the defined interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	started := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	run := domain.NewRun(domain.Table{Source: "contract/plates.csv", DestPlate: "DEST"}, started)

	stamp := func(sec int) time.Time { return started.Add(time.Duration(sec) * time.Second) }
	records := []domain.Record{
		{TransferID: "t1", Timestamp: stamp(1), SourcePlate: "P1", SourceWell: "A1", DestPlate: "DEST", DestWell: "A1", Status: domain.StatusCompleted},
		{TransferID: "t2", Timestamp: stamp(2), SourcePlate: "P1", SourceWell: "A2", DestPlate: "DEST", DestWell: "A1", Status: domain.StatusSkipped},
		{TransferID: "t3", Timestamp: stamp(3), SourcePlate: "P2", SourceWell: "B1", DestPlate: "DEST", DestWell: "H12", Status: domain.StatusFailed},
	}

	t.Run("Write and Read", func(t *testing.T) {
		require.NoError(t, store.WriteRecords(ctx, run, records))

		loaded, err := store.ReadRecords(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, loaded, len(records))
		for i := range records {
			assert.Equal(t, records[i].SourcePlate, loaded[i].SourcePlate)
			assert.Equal(t, records[i].SourceWell, loaded[i].SourceWell)
			assert.Equal(t, records[i].DestPlate, loaded[i].DestPlate)
			assert.Equal(t, records[i].DestWell, loaded[i].DestWell)
			assert.Equal(t, records[i].Status, loaded[i].Status)
			assert.True(t, records[i].Timestamp.Equal(loaded[i].Timestamp), "timestamp %d", i)
		}
	})

	t.Run("Rewrite Replaces", func(t *testing.T) {
		require.NoError(t, store.WriteRecords(ctx, run, records[:1]))
		loaded, err := store.ReadRecords(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, domain.StatusCompleted, loaded[0].Status)
	})

	t.Run("Empty Log", func(t *testing.T) {
		require.NoError(t, store.WriteRecords(ctx, run, nil))
		loaded, err := store.ReadRecords(ctx, run.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("Read Non-Existent", func(t *testing.T) {
		_, err := store.ReadRecords(ctx, "non-existent-"+run.ID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := domain.NewRun(domain.Table{Source: "other.csv", DestPlate: "DEST"}, started)
		require.NoError(t, store.WriteRecords(ctx, other, records))

		runs, err := store.ListRuns(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, run.ID)
		assert.Contains(t, runs, other.ID)
	})
}
