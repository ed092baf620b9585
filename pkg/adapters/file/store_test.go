package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/welllit/pkg/adapters/file"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	at := time.Date(2026, 5, 4, 13, 2, 1, 0, time.UTC)
	run := domain.NewRun(domain.Table{Source: "/data/plates.csv", DestPlate: "DEST"}, at)

	recs := []domain.Record{{
		Timestamp:   at,
		SourcePlate: "P1",
		SourceWell:  "A1",
		DestPlate:   "DEST",
		DestWell:    "B2",
		Status:      domain.StatusCompleted,
	}}
	require.NoError(t, store.WriteRecords(context.Background(), run, recs))

	path := filepath.Join(dir, "plates_transfer_record_2026_05_04_13_02_01.csv")
	assert.Equal(t, path, store.Path(run.ID))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Timestamp,Source plate,Source well,Destination plate,Destination well,Status", lines[0])
	assert.Equal(t, "2026-05-04T13:02:01Z,P1,A1,DEST,B2,completed", lines[1])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "absent"))
	runs, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFileStore_EmptyRunID(t *testing.T) {
	store := file.NewStore(t.TempDir())
	assert.Error(t, store.WriteRecords(context.Background(), domain.Run{}, nil))
	_, err := store.ReadRecords(context.Background(), "")
	assert.Error(t, err)
}
