package protocol

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/wells"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs returns a generator producing t1, t2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	base := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newTestBuilder(opts ...Option) *Builder {
	defaults := []Option{WithIDGenerator(sequentialIDs()), WithClock(tickingClock())}
	return NewBuilder(append(defaults, opts...)...)
}

func rows(triples ...[3]string) []domain.Row {
	out := make([]domain.Row, len(triples))
	for i, t := range triples {
		out[i] = domain.Row{PlateName: t[0], SourceWell: t[1], DestWell: t[2]}
	}
	return out
}

func buildErr(t *testing.T, err error) *domain.BuildError {
	t.Helper()
	var be *domain.BuildError
	require.True(t, errors.As(err, &be), "expected *domain.BuildError, got %v", err)
	return be
}

func TestBuild_SinglePlate(t *testing.T) {
	p, err := newTestBuilder().Build(rows(
		[3]string{"P1", "A1", "A1"},
		[3]string{"P1", "A2", "A2"},
	), "DEST")
	require.NoError(t, err)

	assert.Equal(t, 1, p.NumPlates())
	assert.Equal(t, 2, p.NumTransfers())
	assert.Equal(t, "DEST", p.DestPlate())

	snap := p.Snapshot()
	assert.Equal(t, domain.StateActive, snap.State)
	assert.Equal(t, 0, snap.PlateIndex)
	assert.Equal(t, 0, snap.TransferIndex)
	assert.Equal(t, "t1", snap.Current.ID)
	assert.False(t, snap.CanUndo)

	for _, tr := range p.Transfers() {
		assert.Equal(t, domain.StatusUncompleted, tr.Status)
		assert.Nil(t, tr.Timestamp)
		assert.Equal(t, "DEST", tr.DestPlate)
	}
}

func TestBuild_OrderFollowsFirstAppearance(t *testing.T) {
	p, err := newTestBuilder().Build(rows(
		[3]string{"P2", "A1", "A1"},
		[3]string{"P1", "A1", "A2"},
		[3]string{"P2", "B1", "A3"},
		[3]string{"P3", "C1", "A4"},
		[3]string{"P1", "B1", "A5"},
	), "DEST")
	require.NoError(t, err)

	plates := p.Plates()
	require.Len(t, plates, 3)
	assert.Equal(t, "P2", plates[0].Name)
	assert.Equal(t, "P1", plates[1].Name)
	assert.Equal(t, "P3", plates[2].Name)

	assert.Equal(t, []string{"t1", "t3"}, plates[0].TransferIDs)
	assert.Equal(t, []string{"t2", "t4"}, plates[1].TransferIDs)
	assert.Equal(t, []string{"t5"}, plates[2].TransferIDs)

	// Sum of plate sizes equals total equals sequence length
	sum := 0
	for _, g := range plates {
		sum += len(g.TransferIDs)
	}
	assert.Equal(t, p.NumTransfers(), sum)
	assert.Len(t, p.Sequence(), sum)
	assert.Equal(t, []string{"t1", "t3", "t2", "t4", "t5"}, p.Sequence())

	// In-plate order equals source row order
	seq := p.Transfers()
	assert.Equal(t, "A1", seq[0].SourceWell)
	assert.Equal(t, "B1", seq[1].SourceWell)
	assert.Equal(t, "A3", seq[1].DestWell)
}

func TestBuild_DuplicateSourceRejected(t *testing.T) {
	_, err := newTestBuilder().Build(rows(
		[3]string{"P1", "A1", "A1"},
		[3]string{"P1", "A1", "A2"},
	), "DEST")
	require.Error(t, err)

	be := buildErr(t, err)
	require.Len(t, be.Violations, 1)
	v := be.Violations[0]
	assert.Equal(t, domain.ViolationDuplicateSource, v.Kind)
	assert.Equal(t, "P1", v.Plate)
	assert.Equal(t, "A1", v.Well)
	assert.Equal(t, []int{2, 3}, v.Rows)
	assert.Contains(t, err.Error(), "Plate P1 has duplicates")
}

func TestBuild_DuplicateSourceIsCaseInsensitive(t *testing.T) {
	_, err := newTestBuilder().Build(rows(
		[3]string{"P1", "b2", "A1"},
		[3]string{"P1", "C3", "A2"},
		[3]string{"P1", "B02", "A3"},
	), "DEST")
	be := buildErr(t, err)
	require.Len(t, be.Violations, 1)
	assert.Equal(t, "B2", be.Violations[0].Well)
	assert.Equal(t, []int{2, 4}, be.Violations[0].Rows)
}

func TestBuild_SameSourceAcrossPlatesAllowed(t *testing.T) {
	p, err := newTestBuilder().Build(rows(
		[3]string{"P1", "A1", "A1"},
		[3]string{"P2", "A1", "A2"},
	), "DEST")
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumPlates())
}

func TestBuild_DuplicateDestinationsAllowed(t *testing.T) {
	p, err := newTestBuilder().Build(rows(
		[3]string{"P1", "A1", "H12"},
		[3]string{"P1", "A2", "H12"},
		[3]string{"P2", "A1", "H12"},
	), "DEST")
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumTransfers())
}

func TestBuild_AggregatesAllViolations(t *testing.T) {
	_, err := newTestBuilder().Build(rows(
		[3]string{"P1", "A1", "A1"},
		[3]string{"P1", "A1", "Z9"},
		[3]string{"P1", "A13", "B1"},
		[3]string{"", "A1", "A1"},
		[3]string{"P2", "C1", ""},
		[3]string{"P2", "C1", "C2"},
	), "")
	be := buildErr(t, err)

	kinds := make(map[domain.ViolationKind]int)
	for _, v := range be.Violations {
		kinds[v.Kind]++
	}
	assert.Equal(t, 1, kinds[domain.ViolationDestPlate])
	assert.Equal(t, 1, kinds[domain.ViolationPlateName])
	assert.Equal(t, 2, kinds[domain.ViolationDuplicateSource])
	assert.Equal(t, 1, kinds[domain.ViolationSourceWell])
	assert.Equal(t, 2, kinds[domain.ViolationDestWell])

	for _, v := range be.Violations {
		if v.Kind == domain.ViolationPlateName {
			assert.Equal(t, []int{5}, v.Rows)
		}
		if v.Kind == domain.ViolationSourceWell {
			assert.Equal(t, "A13", v.Well)
			assert.Equal(t, []int{4}, v.Rows)
		}
	}
}

func TestBuild_UnnamedRowStillChecksWells(t *testing.T) {
	_, err := newTestBuilder().Build(rows([3]string{"", "Z99", "Q77"}), "D")
	be := buildErr(t, err)

	require.Len(t, be.Violations, 3)
	assert.Equal(t, domain.ViolationPlateName, be.Violations[0].Kind)
	assert.Equal(t, domain.ViolationSourceWell, be.Violations[1].Kind)
	assert.Equal(t, "Z99", be.Violations[1].Well)
	assert.Equal(t, domain.ViolationDestWell, be.Violations[2].Kind)
	assert.Equal(t, "Q77", be.Violations[2].Well)
	for _, v := range be.Violations {
		assert.Empty(t, v.Plate)
		assert.Equal(t, []int{2}, v.Rows)
	}
	assert.Contains(t, be.Error(), `Row [2]: invalid SourceWell "Z99"`)
}

func TestBuild_Densities(t *testing.T) {
	table := rows([3]string{"P1", "P24", "A1"})

	_, err := newTestBuilder().Build(table, "DEST")
	assert.Error(t, err, "P24 is not a 96-well label")

	p, err := newTestBuilder(WithDensities(wells.Density384, wells.Density96)).Build(table, "DEST")
	require.NoError(t, err)
	assert.Equal(t, "P24", p.Current().SourceWell)
}

func TestBuild_NormalizesLabels(t *testing.T) {
	p, err := newTestBuilder().Build(rows([3]string{" P1 ", "a01", "h12"}), " DEST ")
	require.NoError(t, err)
	cur := p.Current()
	assert.Equal(t, "P1", cur.SourcePlate)
	assert.Equal(t, "A1", cur.SourceWell)
	assert.Equal(t, "H12", cur.DestWell)
	assert.Equal(t, "DEST", cur.DestPlate)
}

func TestBuild_EmptyTable(t *testing.T) {
	p, err := newTestBuilder().Build(nil, "DEST")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrEmptyTable)
}

func TestBuild_RejectsReusedIDs(t *testing.T) {
	_, err := newTestBuilder(WithIDGenerator(func() string { return "same" })).Build(rows(
		[3]string{"P1", "A1", "A1"},
		[3]string{"P1", "A2", "A2"},
	), "DEST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unusable id")
}

func TestBuild_DefaultIDsAreUnique(t *testing.T) {
	var table []domain.Row
	for r := 'A'; r <= 'H'; r++ {
		for c := 1; c <= 12; c++ {
			table = append(table, domain.Row{PlateName: "P1", SourceWell: fmt.Sprintf("%c%d", r, c), DestWell: "A1"})
		}
	}
	p, err := NewBuilder().Build(table, "DEST")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, id := range p.Sequence() {
		assert.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
	assert.Len(t, seen, 96)
}
