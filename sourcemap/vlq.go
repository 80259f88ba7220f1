package sourcemap

import (
	"errors"
	"strings"
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqShift        = 5
	vlqContinuation = 1 << vlqShift
	vlqMask         = vlqContinuation - 1
)

// ErrBadVLQ is returned for malformed VLQ input.
var ErrBadVLQ = errors.New("malformed VLQ value")

// AppendVLQ appends the base64 VLQ encoding of v to buf. The sign is stored
// in the lowest bit of the first digit.
func AppendVLQ(buf []byte, v int32) []byte {
	var u uint64
	if v < 0 {
		u = uint64(-int64(v))<<1 | 1
	} else {
		u = uint64(v) << 1
	}
	for {
		digit := u & vlqMask
		u >>= vlqShift
		if u > 0 {
			digit |= vlqContinuation
		}
		buf = append(buf, base64Chars[digit])
		if u == 0 {
			return buf
		}
	}
}

// ReadVLQ decodes one value from the front of s and returns it with the
// number of bytes consumed.
func ReadVLQ(s string) (int32, int, error) {
	var u uint64
	shift := uint(0)
	for i := 0; i < len(s); i++ {
		digit := strings.IndexByte(base64Chars, s[i])
		if digit < 0 || shift > 32 {
			return 0, 0, ErrBadVLQ
		}
		u |= uint64(digit&vlqMask) << shift
		if digit&vlqContinuation == 0 {
			v := int64(u >> 1)
			if u&1 == 1 {
				v = -v
			}
			return int32(v), i + 1, nil
		}
		shift += vlqShift
	}
	return 0, 0, ErrBadVLQ
}
