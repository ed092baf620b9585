package csv_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/welllit/pkg/adapters/csv"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, content string) (domain.Table, error) {
	t.Helper()
	return csv.FromReader(strings.NewReader(content), "bench.csv").ReadTable(context.Background())
}

func TestReadTable(t *testing.T) {
	table, err := read(t, "DEST-01,,\nPlateName,SourceWell,DestWell\nP1,A1,A1\nP1,a2,A1\nP2,B1,H12\n")
	require.NoError(t, err)

	assert.Equal(t, "bench.csv", table.Source)
	assert.Equal(t, "DEST-01", table.DestPlate)
	assert.Equal(t, []domain.Row{
		{PlateName: "P1", SourceWell: "A1", DestWell: "A1"},
		{PlateName: "P1", SourceWell: "a2", DestWell: "A1"},
		{PlateName: "P2", SourceWell: "B1", DestWell: "H12"},
	}, table.Rows)
}

func TestReadTable_HeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header string
		line   string
	}{
		{"Reordered", "DestWell,PlateName,SourceWell", "B2,P1,A1"},
		{"Spaced and lowercase", "plate name, source well, dest well", "P1,A1,B2"},
		{"TargetWell alias", "PlateName,SourceWell,TargetWell", "P1,A1,B2"},
		{"Unknown header falls back to positions", "a,b,c", "P1,A1,B2"},
		{"Extra column ignored", "Notes,PlateName,SourceWell,DestWell", "x,P1,A1,B2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := read(t, "DEST\n"+tt.header+"\n"+tt.line+"\n")
			require.NoError(t, err)
			require.Len(t, table.Rows, 1)
			assert.Equal(t, domain.Row{PlateName: "P1", SourceWell: "A1", DestWell: "B2"}, table.Rows[0])
		})
	}
}

func TestReadTable_BlankLinesAndShortRows(t *testing.T) {
	table, err := read(t, "\nDEST\n\nPlateName,SourceWell,DestWell\n,,\nP1,A1\n\n")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, domain.Row{PlateName: "P1", SourceWell: "A1"}, table.Rows[0])
}

func TestReadTable_Empty(t *testing.T) {
	_, err := read(t, "")
	assert.ErrorIs(t, err, domain.ErrEmptyTable)

	table, err := read(t, "DEST\nPlateName,SourceWell,DestWell\n")
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestReadTable_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plates.csv")
	require.NoError(t, os.WriteFile(path, []byte("DEST\nPlateName,SourceWell,DestWell\nP1,A1,A1\n"), 0644))

	table, err := csv.NewReader(path).ReadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, table.Source)
	assert.Len(t, table.Rows, 1)

	_, err = csv.NewReader(filepath.Join(t.TempDir(), "missing.csv")).ReadTable(context.Background())
	assert.Error(t, err)
}
