package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

func openTest(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "dives.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestRecord_ThenListByFamily(t *testing.T) {
	idx := openTest(t)

	log := &types.Logbook{DiveNumber: 7, StartEpoch: 1000, MaxDepthFt: 82.5, BottomTimeSec: 2400}
	require.NoError(t, idx.Record("digest-a", 0, types.FamilyCommanderI, log))

	entries, err := idx.ListByFamily(types.FamilyCommanderI)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "digest-a", entries[0].FileDigest)
	require.Equal(t, 7, entries[0].DiveNumber)
	require.Equal(t, 82.5, entries[0].MaxDepthFt)

	other, err := idx.ListByFamily(types.FamilyNemesis)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestRecord_UpsertOverwritesSameDive(t *testing.T) {
	idx := openTest(t)

	require.NoError(t, idx.Record("digest-a", 0, types.FamilyCommanderI, &types.Logbook{DiveNumber: 1, MaxDepthFt: 10}))
	require.NoError(t, idx.Record("digest-a", 0, types.FamilyCommanderI, &types.Logbook{DiveNumber: 1, MaxDepthFt: 99}))

	entries, err := idx.ListByFamily(types.FamilyCommanderI)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 99.0, entries[0].MaxDepthFt)
}

func TestListByDateRange_FiltersOnStartEpoch(t *testing.T) {
	idx := openTest(t)

	require.NoError(t, idx.Record("digest-a", 0, types.FamilyCommanderI, &types.Logbook{StartEpoch: 100}))
	require.NoError(t, idx.Record("digest-a", 1, types.FamilyCommanderI, &types.Logbook{StartEpoch: 500}))
	require.NoError(t, idx.Record("digest-a", 2, types.FamilyCommanderI, &types.Logbook{StartEpoch: 900}))

	entries, err := idx.ListByDateRange(200, 600)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].DiveIndex)
}
