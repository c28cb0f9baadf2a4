package index

import (
	"strconv"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keys []string

func (k keys) GetUnchecked(pos int) string { return k[pos] }

func (k *keys) add(t *Table, s string, hash uint64) {
	*k = append(*k, s)
	t.Record(hash, len(*k)-1)
}

func TestProbeRecord(t *testing.T) {
	t.Parallel()

	var ks keys
	table := New(0)

	_, ok := table.Probe("foo", xxhash.Sum64String("foo"), ks)
	assert.False(t, ok)

	for _, s := range []string{"foo", "bar", "baz"} {
		ks.add(table, s, xxhash.Sum64String(s))
	}

	for want, s := range []string{"foo", "bar", "baz"} {
		pos, ok := table.Probe(s, xxhash.Sum64String(s), ks)
		require.True(t, ok, s)
		assert.Equal(t, want, pos)
	}
	_, ok = table.Probe("rofl", xxhash.Sum64String("rofl"), ks)
	assert.False(t, ok)
	assert.Equal(t, 3, table.Len())
}

func TestCollidingHashesCompareContent(t *testing.T) {
	t.Parallel()

	var ks keys
	table := New(4)
	for i := 0; i < 100; i++ {
		ks.add(table, strconv.Itoa(i), 7)
	}

	for i := 0; i < 100; i++ {
		pos, ok := table.Probe(strconv.Itoa(i), 7, ks)
		require.True(t, ok)
		assert.Equal(t, i, pos)
	}
	_, ok := table.Probe("100", 7, ks)
	assert.False(t, ok)
}

func TestGrowthAndCapacity(t *testing.T) {
	t.Parallel()

	var ks keys
	table := New(10)
	assert.GreaterOrEqual(t, table.Cap(), 10)

	for i := 0; i < 1000; i++ {
		s := "k" + strconv.Itoa(i)
		ks.add(table, s, xxhash.Sum64String(s))
		assert.LessOrEqual(t, table.Len(), table.Cap())
	}

	table.Reserve(5000)
	assert.GreaterOrEqual(t, table.Cap(), 6000)

	table.ShrinkToFit()
	assert.GreaterOrEqual(t, table.Cap(), 1000)
	assert.Less(t, table.Cap(), 2000)

	for i := 0; i < 1000; i++ {
		s := "k" + strconv.Itoa(i)
		pos, ok := table.Probe(s, xxhash.Sum64String(s), ks)
		require.True(t, ok)
		assert.Equal(t, i, pos)
	}
}

func TestResetAndClone(t *testing.T) {
	t.Parallel()

	var ks keys
	table := New(0)
	ks.add(table, "a", 1)
	ks.add(table, "b", 2)

	clone := table.Clone()
	table.Reset()
	assert.Equal(t, 0, table.Len())
	_, ok := table.Probe("a", 1, ks)
	assert.False(t, ok)

	pos, ok := clone.Probe("b", 2, ks)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	table.ShrinkToFit()
	assert.Equal(t, 0, table.Cap())
	ks = ks[:0]
	ks.add(table, "c", 3)
	pos, ok = table.Probe("c", 3, ks)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
}
