package streaming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RangeUnit is the only range unit accepted.
const RangeUnit = "bytes"

var (
	// ErrInvalidRange is returned for a Range header that is not a single
	// "bytes=start-[end]" range.
	ErrInvalidRange = errors.New("invalid range")
	// ErrRangeNotSatisfiable is returned when a well-formed range does not
	// overlap the file.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

// ByteRange is an inclusive span of byte offsets with 0 <= Start <= End.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes in the range.
func (br ByteRange) Length() int64 {
	return br.End - br.Start + 1
}

// ContentRange formats the Content-Range header value for a file of size
// total.
func (br ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("%s %d-%d/%d", RangeUnit, br.Start, br.End, total)
}

// UnsatisfiedContentRange formats the Content-Range header sent with a 416.
func UnsatisfiedContentRange(total int64) string {
	return fmt.Sprintf("%s */%d", RangeUnit, total)
}

// ParseRange parses a Range header of the form "bytes=start-[end]" against a
// file of size bytes. A missing end, or an end past the last byte, selects
// through the end of the file. Suffix ranges ("bytes=-500") and multiple
// ranges are rejected with ErrInvalidRange.
func ParseRange(header string, size int64) (ByteRange, error) {
	ranges, ok := strings.CutPrefix(strings.TrimSpace(header), RangeUnit+"=")
	if !ok {
		return ByteRange{}, fmt.Errorf("%w: unsupported unit in %q", ErrInvalidRange, header)
	}
	if strings.Contains(ranges, ",") {
		return ByteRange{}, fmt.Errorf("%w: multiple ranges in %q", ErrInvalidRange, header)
	}

	startStr, endStr, found := strings.Cut(strings.TrimSpace(ranges), "-")
	if !found {
		return ByteRange{}, fmt.Errorf("%w: missing '-' in %q", ErrInvalidRange, header)
	}

	start, err := parseOffset(strings.TrimSpace(startStr))
	if err != nil {
		return ByteRange{}, fmt.Errorf("%w: start in %q", ErrInvalidRange, header)
	}

	end := size - 1
	if endStr = strings.TrimSpace(endStr); endStr != "" {
		parsed, err := parseOffset(endStr)
		if err != nil {
			return ByteRange{}, fmt.Errorf("%w: end in %q", ErrInvalidRange, header)
		}
		if start > parsed {
			return ByteRange{}, fmt.Errorf("%w: start %d after end %d", ErrRangeNotSatisfiable, start, parsed)
		}
		if parsed < end {
			end = parsed
		}
	}

	if start >= size {
		return ByteRange{}, fmt.Errorf("%w: start %d beyond size %d", ErrRangeNotSatisfiable, start, size)
	}

	return ByteRange{Start: start, End: end}, nil
}

// parseOffset accepts only unsigned decimal digits.
func parseOffset(s string) (int64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(s, 10, 64)
}
