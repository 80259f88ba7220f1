package ast

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// TempPrefix starts every synthetic identifier. The scanner rejects user
// identifiers carrying it, so temporaries never collide with user names.
const TempPrefix = "$$$"

// Temps mints temporary identifier names from a monotonic counter. The zero
// value is ready to use and safe for concurrent use, so a batch may share one
// Temps across units when names must be unique across the whole build.
type Temps struct {
	n atomic.Uint64
}

// Next returns a fresh name. Names are never reused.
func (t *Temps) Next() string {
	return TempPrefix + strconv.FormatUint(t.n.Add(1), 36)
}

// IsTemp reports whether name was minted by a Temps.
func IsTemp(name string) bool {
	return strings.HasPrefix(name, TempPrefix)
}
