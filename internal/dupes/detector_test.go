package dupes

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/twins/internal/event"
	"github.com/bamsammich/twins/internal/stats"
)

func run(t *testing.T, m *memReader, cfg Config, paths ...string) Result {
	t.Helper()
	cfg.Reader = m
	groups := m.groupsOf(paths...)
	groups.Prune()
	res, err := NewDetector(cfg).Run(context.Background(), groups)
	require.NoError(t, err)
	return res
}

func TestDetectorThreeFilesOneDiffers(t *testing.T) {
	m := newMemReader()
	m.files["/a"] = []byte("identical content!")
	m.files["/b"] = []byte("identical content!")
	m.files["/c"] = []byte("identical content?")

	res := run(t, m, Config{}, "/a", "/b", "/c")

	assert.Equal(t, []string{"/a"}, res.Graph.Originals())
	assert.Equal(t, []string{"/b"}, res.Graph.Copies("/a"))
	assert.Nil(t, res.Graph.Copies("/c"))
	assert.Equal(t, 1, res.Graph.DuplicateCount())
	assert.Empty(t, res.Skipped)
}

func TestDetectorOriginalFollowsScanOrder(t *testing.T) {
	m := newMemReader()
	m.files["/z"] = []byte("same")
	m.files["/a"] = []byte("same")

	res := run(t, m, Config{}, "/z", "/a")
	assert.Equal(t, []string{"/z"}, res.Graph.Originals())
	assert.Equal(t, []string{"/a"}, res.Graph.Copies("/z"))
}

func TestDetectorNIdenticalFiles(t *testing.T) {
	m := newMemReader()
	paths := []string{"/1", "/2", "/3", "/4", "/5"}
	for _, p := range paths {
		m.files[p] = []byte("five identical copies")
	}

	res := run(t, m, Config{}, paths...)

	require.Equal(t, 1, res.Graph.Len())
	assert.Equal(t, []string{"/1"}, res.Graph.Originals())
	assert.Equal(t, []string{"/2", "/3", "/4", "/5"}, res.Graph.Copies("/1"))
	assert.Equal(t, 4, res.Graph.DuplicateCount())

	// Each file is sampled and hashed once regardless of pair count.
	for _, p := range paths {
		assert.Equal(t, 1, m.samples[p], "samples of %s", p)
		assert.Equal(t, 1, m.digests[p], "digests of %s", p)
	}
}

func TestDetectorTwoDistinctSetsInOneGroup(t *testing.T) {
	m := newMemReader()
	m.files["/a1"] = []byte("AAAA")
	m.files["/b1"] = []byte("BBBB")
	m.files["/a2"] = []byte("AAAA")
	m.files["/b2"] = []byte("BBBB")

	res := run(t, m, Config{}, "/a1", "/b1", "/a2", "/b2")

	assert.Equal(t, []string{"/a1", "/b1"}, res.Graph.Originals())
	assert.Equal(t, []string{"/a2"}, res.Graph.Copies("/a1"))
	assert.Equal(t, []string{"/b2"}, res.Graph.Copies("/b1"))
}

func TestDetectorSampleMatchDefersToDigest(t *testing.T) {
	a := bytes.Repeat([]byte{'x'}, 100)
	b := bytes.Clone(a)
	b[30] = 'y' // outside every sample window

	m := newMemReader()
	m.files["/a"] = a
	m.files["/b"] = b

	res := run(t, m, Config{}, "/a", "/b")

	assert.Zero(t, res.Graph.Len(), "equal samples alone must not make duplicates")
	assert.Equal(t, 1, m.digests["/a"])
	assert.Equal(t, 1, m.digests["/b"])
}

func TestDetectorSampleMismatchSkipsDigest(t *testing.T) {
	m := newMemReader()
	m.files["/a"] = []byte("head-and-more")
	m.files["/b"] = []byte("HEAD-and-more")

	res := run(t, m, Config{}, "/a", "/b")
	assert.Zero(t, res.Graph.Len())
	assert.Empty(t, m.digests, "different samples need no full hash")
}

func TestDetectorSingletonGroupDoesNoIO(t *testing.T) {
	m := newMemReader()
	m.files["/lonely"] = []byte("only file of this size")
	m.files["/x"] = []byte("ab")
	m.files["/y"] = []byte("cd")

	// Without pruning the detector still skips groups of one.
	groups := m.groupsOf("/lonely", "/x", "/y")
	_, err := NewDetector(Config{Reader: m}).Run(context.Background(), groups)
	require.NoError(t, err)

	assert.Zero(t, m.samples["/lonely"])
	assert.Zero(t, m.digests["/lonely"])
}

func TestDetectorAllSingletons(t *testing.T) {
	m := newMemReader()
	m.files["/1"] = []byte("a")
	m.files["/2"] = []byte("bb")
	m.files["/3"] = []byte("ccc")

	res := run(t, m, Config{}, "/1", "/2", "/3")
	assert.Zero(t, res.Graph.Len())
	assert.Zero(t, m.totalIO())
}

func TestDetectorEmptyFiles(t *testing.T) {
	m := newMemReader()
	m.files["/e1"] = nil
	m.files["/e2"] = nil

	res := run(t, m, Config{}, "/e1", "/e2")
	assert.Equal(t, []string{"/e2"}, res.Graph.Copies("/e1"))
}

func TestDetectorShortFiles(t *testing.T) {
	m := newMemReader()
	m.files["/s1"] = []byte("abc")
	m.files["/s2"] = []byte("abc")
	m.files["/s3"] = []byte("abd")

	res := run(t, m, Config{}, "/s1", "/s2", "/s3")
	assert.Equal(t, []string{"/s2"}, res.Graph.Copies("/s1"))
	assert.Equal(t, 1, res.Graph.DuplicateCount())
}

func TestDetectorFlaggedRecordsAreNotReused(t *testing.T) {
	m := newMemReader()
	for _, p := range []string{"/a", "/b", "/c"} {
		m.files[p] = []byte("triplet")
	}

	res := run(t, m, Config{}, "/a", "/b", "/c")

	// /b never becomes an original for /c.
	assert.Nil(t, res.Graph.Copies("/b"))
	assert.Equal(t, []string{"/b", "/c"}, res.Graph.Copies("/a"))
}

func TestDetectorSkipsUnreadable(t *testing.T) {
	m := newMemReader()
	m.files["/a"] = []byte("payload")
	m.files["/bad"] = []byte("payload")
	m.files["/c"] = []byte("payload")
	m.broken["/bad"] = true

	res := run(t, m, Config{}, "/a", "/bad", "/c")

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "/bad", res.Skipped[0].Path)
	assert.ErrorIs(t, res.Skipped[0].Err, ErrIO)
	assert.Equal(t, []string{"/c"}, res.Graph.Copies("/a"))
	assert.Equal(t, 1, m.samples["/bad"], "a failed file is not retried")
}

func TestDetectorSkipsUnreadableSource(t *testing.T) {
	m := newMemReader()
	m.files["/bad"] = []byte("payload")
	m.files["/b"] = []byte("payload")
	m.files["/c"] = []byte("payload")
	m.broken["/bad"] = true

	res := run(t, m, Config{}, "/bad", "/b", "/c")

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "/bad", res.Skipped[0].Path)
	assert.Equal(t, []string{"/b"}, res.Graph.Originals())
	assert.Equal(t, []string{"/c"}, res.Graph.Copies("/b"))
}

func TestDetectorAbortOnError(t *testing.T) {
	m := newMemReader()
	m.files["/a"] = []byte("payload")
	m.files["/bad"] = []byte("payload")
	m.broken["/bad"] = true

	groups := m.groupsOf("/a", "/bad")
	_, err := NewDetector(Config{Reader: m, Policy: AbortOnError}).Run(context.Background(), groups)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "/bad", fe.Path)
	assert.Equal(t, "sample", fe.Op)
}

func TestDetectorParanoid(t *testing.T) {
	m := newMemReader()
	m.files["/a"] = []byte("checked twice")
	m.files["/b"] = []byte("checked twice")

	res := run(t, m, Config{Paranoid: true}, "/a", "/b")
	assert.Equal(t, []string{"/b"}, res.Graph.Copies("/a"))
	assert.Equal(t, 1, m.equals)

	m2 := newMemReader()
	m2.files["/a"] = []byte("checked once")
	m2.files["/b"] = []byte("checked once")
	run(t, m2, Config{}, "/a", "/b")
	assert.Zero(t, m2.equals)
}

func TestDetectorCanceled(t *testing.T) {
	m := newMemReader()
	m.files["/a"] = []byte("x")
	m.files["/b"] = []byte("x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDetector(Config{Reader: m}).Run(ctx, m.groupsOf("/a", "/b"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.totalIO())
}

func TestDetectorStatsAndEvents(t *testing.T) {
	m := newMemReader()
	m.files["/a"] = []byte("0123456789")
	m.files["/b"] = []byte("0123456789")
	m.files["/c"] = []byte("0123456780")

	collector := stats.NewCollector()
	events := make(chan event.Event, 16)
	run(t, m, Config{Stats: collector, Events: events}, "/a", "/b", "/c")
	close(events)

	snap := collector.Snapshot()
	assert.Equal(t, int64(3), snap.SamplesTaken)
	assert.Equal(t, int64(2), snap.FilesHashed)
	assert.Equal(t, int64(20), snap.BytesHashed)
	assert.Equal(t, int64(1), snap.Duplicates)
	assert.Equal(t, int64(10), snap.BytesReclaimable)

	var types []event.Type
	var dup event.Event
	for ev := range events {
		types = append(types, ev.Type)
		if ev.Type == event.DuplicateFound {
			dup = ev
		}
	}
	assert.Equal(t, []event.Type{event.GroupStarted, event.DuplicateFound, event.CompareComplete}, types)
	assert.Equal(t, "/b", dup.Path)
	assert.Equal(t, "/a", dup.Original)
}
