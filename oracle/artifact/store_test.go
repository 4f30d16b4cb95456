package artifact

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/paw-chain/distance/x/distance/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), log.NewNopLogger())
	require.NoError(t, err)
	return s
}

func TestEncodeDecode(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOf(rapid.Uint32Range(0, uint32(types.PerbillOne))).Draw(t, "distances")
		distances := make([]types.Perbill, len(raw))
		for i, d := range raw {
			distances[i] = types.Perbill(d)
		}
		got, err := Decode(Encode(distances))
		require.NoError(t, err)
		require.Len(t, got, len(distances))
		for i := range distances {
			require.Equal(t, distances[i], got[i])
		}
	})
}

func TestEncodeLayout(t *testing.T) {
	bz := Encode([]types.Perbill{1, types.PerbillOne})
	require.Equal(t, Version, binary.BigEndian.Uint32(bz[:4]))
	require.Equal(t, byte(2), bz[4])
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(bz[5:9]))
	require.Equal(t, uint32(types.PerbillOne), binary.BigEndian.Uint32(bz[9:13]))
	require.Len(t, bz, 13)
}

func TestDecodeRejects(t *testing.T) {
	good := Encode([]types.Perbill{5, 6})

	_, err := Decode(good[:3])
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(good[:len(good)-1])
	require.ErrorIs(t, err, ErrMalformed)

	other := append([]byte(nil), good...)
	binary.BigEndian.PutUint32(other, Version+1)
	_, err = Decode(other)
	require.ErrorIs(t, err, ErrUnrecognizedVersion)

	huge := binary.BigEndian.AppendUint32(nil, Version)
	huge = binary.AppendUvarint(huge, 1<<62)
	_, err = Decode(huge)
	require.ErrorIs(t, err, ErrMalformed)

	outOfRange := Encode([]types.Perbill{types.PerbillOne + 1})
	_, err = Decode(outOfRange)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestWriteIsCreateNew(t *testing.T) {
	s := newStore(t)

	written, err := s.Write(Artifact{Period: 7, Distances: []types.Perbill{1, 2}})
	require.NoError(t, err)
	require.True(t, written)

	written, err = s.Write(Artifact{Period: 7, Distances: []types.Perbill{9}})
	require.NoError(t, err)
	require.False(t, written)

	a, err := s.Read(7)
	require.NoError(t, err)
	require.Equal(t, []types.Perbill{1, 2}, a.Distances)

	exists, err := s.Exists(7)
	require.NoError(t, err)
	require.True(t, exists)

	// no temporary files left behind
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestReadMissingAndForeignVersion(t *testing.T) {
	s := newStore(t)

	_, err := s.Read(3)
	require.ErrorIs(t, err, ErrNotFound)

	bz := Encode([]types.Perbill{1})
	binary.BigEndian.PutUint32(bz, 99)
	require.NoError(t, os.WriteFile(s.Path(3), bz, 0o600))

	_, err = s.Read(3)
	require.ErrorIs(t, err, ErrUnrecognizedVersion)
}

func TestPeriodsSkipsForeignFiles(t *testing.T) {
	s := newStore(t)
	for _, p := range []uint64{12, 3, 8} {
		_, err := s.Write(Artifact{Period: p})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "002-4"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "001-abc"), nil, 0o600))

	periods, err := s.Periods()
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 8, 12}, periods)
}

func TestPruneKeepsCurrentAndNewest(t *testing.T) {
	s := newStore(t)
	for p := uint64(1); p <= 5; p++ {
		_, err := s.Write(Artifact{Period: p, Distances: []types.Perbill{types.Perbill(p)}})
		require.NoError(t, err)
	}

	removed, err := s.Prune(4)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, removed)

	periods, err := s.Periods()
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 5}, periods)

	// newest survives even when not listed
	removed, err = s.Prune()
	require.NoError(t, err)
	require.Equal(t, []uint64{4}, removed)

	periods, err = s.Periods()
	require.NoError(t, err)
	require.Equal(t, []uint64{5}, periods)
}

func TestPruneEmpty(t *testing.T) {
	s := newStore(t)
	removed, err := s.Prune(1)
	require.NoError(t, err)
	require.Empty(t, removed)
}

func TestNewStoreRequiresDir(t *testing.T) {
	_, err := NewStore("", log.NewNopLogger())
	require.Error(t, err)
}
