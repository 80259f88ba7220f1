package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVLQKnownValues(t *testing.T) {
	tests := []struct {
		v    int32
		want string
	}{
		{0, "A"},
		{1, "C"},
		{-1, "D"},
		{15, "e"},
		{16, "gB"},
		{-16, "hB"},
		{1000, "w+B"},
	}
	for _, tt := range tests {
		got := string(AppendVLQ(nil, tt.v))
		assert.Equal(t, tt.want, got, "encode %d", tt.v)
		v, n, err := ReadVLQ(got)
		require.NoError(t, err)
		assert.Equal(t, tt.v, v)
		assert.Equal(t, len(got), n)
	}
}

func TestReadVLQMalformed(t *testing.T) {
	_, _, err := ReadVLQ("g")
	assert.ErrorIs(t, err, ErrBadVLQ, "dangling continuation")
	_, _, err = ReadVLQ("!")
	assert.ErrorIs(t, err, ErrBadVLQ)
}

func TestEncodeLinesAndDeltas(t *testing.T) {
	got, err := Encode([]Mapping{
		{GenLine: 0, GenCol: 0, SrcLine: 0, SrcCol: 0},
		{GenLine: 0, GenCol: 4, SrcLine: 0, SrcCol: 4},
		{GenLine: 2, GenCol: 2, SrcLine: 1, SrcCol: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "AAAA,IAAI;;EACJ", got)
}

func TestEncodeDecode(t *testing.T) {
	in := []Mapping{
		{GenLine: 0, GenCol: 0, SrcLine: 3, SrcCol: 1},
		{GenLine: 1, GenCol: 2, SrcLine: 4, SrcCol: 0},
		{GenLine: 1, GenCol: 10, SrcLine: 2, SrcCol: 7},
		{GenLine: 5, GenCol: 0, Source: 1, SrcLine: 0, SrcCol: 0},
	}
	s, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBuilderMap(t *testing.T) {
	b := NewBuilder("out.js")
	src := b.AddSource("in.es6", "var a = 1")
	assert.Equal(t, src, b.AddSource("in.es6", ""), "sources are deduplicated")
	b.Add(Mapping{GenLine: 0, GenCol: 0, Source: src})
	b.Add(Mapping{GenLine: 0, GenCol: 0, Source: src, SrcCol: 9})
	assert.Equal(t, 1, b.Len(), "duplicate generated position is dropped")

	m, err := b.Map()
	require.NoError(t, err)
	data, err := m.JSON()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 3, parsed.Version)
	assert.Equal(t, "out.js", parsed.File)
	assert.Equal(t, []string{"in.es6"}, parsed.Sources)
	assert.Equal(t, []string{"var a = 1"}, parsed.SourcesContent)
	assert.Equal(t, "AAAA", parsed.Mappings)
}

func TestParseRejectsOtherVersions(t *testing.T) {
	_, err := Parse([]byte(`{"version":2,"sources":[],"names":[],"mappings":""}`))
	assert.Error(t, err)
}
