// Package sourcemap builds revision 3 source maps: a JSON document whose
// mappings field is a base64 VLQ encoding of generated-to-source position
// pairs.
package sourcemap

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// Mapping pairs a generated position with a source position. Lines and
// columns are zero-based; columns count UTF-16 code units.
type Mapping struct {
	GenLine int
	GenCol  int
	Source  int // index into Map.Sources
	SrcLine int
	SrcCol  int
}

// Map is the JSON form of a source map.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// JSON encodes m.
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// Parse decodes a JSON source map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding source map: %w", err)
	}
	if m.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", m.Version)
	}
	return &m, nil
}

// Builder accumulates mappings for one generated file.
type Builder struct {
	file     string
	sources  []string
	contents []string
	index    map[string]int
	mappings []Mapping
}

// NewBuilder returns a Builder for the generated file name.
func NewBuilder(file string) *Builder {
	return &Builder{file: file, index: map[string]int{}}
}

// AddSource registers a source path and returns its index. content is
// embedded in the map when non-empty.
func (b *Builder) AddSource(path, content string) int {
	if i, ok := b.index[path]; ok {
		return i
	}
	i := len(b.sources)
	b.index[path] = i
	b.sources = append(b.sources, path)
	b.contents = append(b.contents, content)
	return i
}

// Add records one mapping. Consecutive mappings for the same generated
// position keep the first.
func (b *Builder) Add(m Mapping) {
	if n := len(b.mappings); n > 0 {
		last := b.mappings[n-1]
		if last.GenLine == m.GenLine && last.GenCol == m.GenCol {
			return
		}
	}
	b.mappings = append(b.mappings, m)
}

// Len returns the number of recorded mappings.
func (b *Builder) Len() int { return len(b.mappings) }

// Map encodes the accumulated mappings.
func (b *Builder) Map() (*Map, error) {
	mappings, err := Encode(b.mappings)
	if err != nil {
		return nil, err
	}
	m := &Map{Version: 3, File: b.file, Sources: b.sources, Names: []string{}, Mappings: mappings}
	if m.Sources == nil {
		m.Sources = []string{}
	}
	for _, c := range b.contents {
		if c != "" {
			m.SourcesContent = b.contents
			break
		}
	}
	return m, nil
}

// Encode renders mappings as the VLQ mappings string. Mappings are sorted by
// generated position first.
func Encode(mappings []Mapping) (string, error) {
	sorted := make([]Mapping, len(mappings))
	copy(sorted, mappings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GenLine != sorted[j].GenLine {
			return sorted[i].GenLine < sorted[j].GenLine
		}
		return sorted[i].GenCol < sorted[j].GenCol
	})

	var buf []byte
	var prevSource, prevSrcLine, prevSrcCol int
	line, prevGenCol := 0, 0
	first := true
	for _, m := range sorted {
		for line < m.GenLine {
			buf = append(buf, ';')
			line++
			prevGenCol = 0
			first = true
		}
		if !first {
			buf = append(buf, ',')
		}
		first = false
		for _, d := range [...]int{
			m.GenCol - prevGenCol,
			m.Source - prevSource,
			m.SrcLine - prevSrcLine,
			m.SrcCol - prevSrcCol,
		} {
			v, err := safecast.Conv[int32](d)
			if err != nil {
				return "", fmt.Errorf("source map delta %d out of range: %w", d, err)
			}
			buf = AppendVLQ(buf, v)
		}
		prevGenCol, prevSource, prevSrcLine, prevSrcCol = m.GenCol, m.Source, m.SrcLine, m.SrcCol
	}
	return string(buf), nil
}

// Decode parses a mappings string. Segments with fewer than four fields map
// nothing and are skipped.
func Decode(s string) ([]Mapping, error) {
	var out []Mapping
	var source, srcLine, srcCol int
	for line, group := range strings.Split(s, ";") {
		genCol := 0
		if group == "" {
			continue
		}
		for _, seg := range strings.Split(group, ",") {
			fields, err := decodeSegment(seg)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if len(fields) == 0 {
				continue
			}
			genCol += fields[0]
			if len(fields) < 4 {
				continue
			}
			source += fields[1]
			srcLine += fields[2]
			srcCol += fields[3]
			out = append(out, Mapping{GenLine: line, GenCol: genCol, Source: source, SrcLine: srcLine, SrcCol: srcCol})
		}
	}
	return out, nil
}

func decodeSegment(seg string) ([]int, error) {
	var fields []int
	for len(seg) > 0 {
		v, n, err := ReadVLQ(seg)
		if err != nil {
			return nil, err
		}
		fields = append(fields, int(v))
		seg = seg[n:]
	}
	return fields, nil
}
