package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange  = errors.New("invalid range format")
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// ByteRange is a single satisfiable byte range, both ends inclusive.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) ContentLength() int64 {
	return r.End - r.Start + 1
}

func (r ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

// ParseRange parses a Range header against the asset size. A missing header
// returns (nil, nil); of a multi-range request only the first range is
// honored.
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}

	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, ErrInvalidRange
	}
	if first, _, multi := strings.Cut(spec, ","); multi {
		spec = strings.TrimSpace(first)
	}

	startPart, endPart, ok := strings.Cut(spec, "-")
	if !ok {
		return nil, ErrInvalidRange
	}

	if startPart == "" {
		return suffixRange(endPart, size)
	}
	return boundedRange(startPart, endPart, size)
}

// suffixRange handles "bytes=-N", the last N bytes of the asset.
func suffixRange(lengthPart string, size int64) (*ByteRange, error) {
	n, err := strconv.ParseInt(lengthPart, 10, 64)
	if err != nil || n <= 0 {
		return nil, ErrInvalidRange
	}
	return clampRange(max(size-n, 0), size-1, size)
}

// boundedRange handles "bytes=start-end" and the open-ended "bytes=start-".
func boundedRange(startPart, endPart string, size int64) (*ByteRange, error) {
	start, err := strconv.ParseInt(startPart, 10, 64)
	if err != nil || start < 0 {
		return nil, ErrInvalidRange
	}

	end := size - 1
	if endPart != "" {
		end, err = strconv.ParseInt(endPart, 10, 64)
		if err != nil {
			return nil, ErrInvalidRange
		}
	}
	return clampRange(start, end, size)
}

func clampRange(start, end, size int64) (*ByteRange, error) {
	if start > end || start >= size {
		return nil, ErrUnsatisfiable
	}
	if end > size-1 {
		end = size - 1
	}
	return &ByteRange{Start: start, End: end}, nil
}
