package seedpack

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

// Input is a read-only view of one blob for the duration of a single
// Compress call. The text and integer views are derived on first use and
// cached so that every detector of a family shares one parse.
//
// An Input is not safe for concurrent use.
type Input struct {
	data []byte

	textDone bool
	textOK   bool

	intsDone bool
	ints     []int64
}

// NewInput wraps data. The slice is borrowed, never modified.
func NewInput(data []byte) *Input {
	return &Input{data: data}
}

// Bytes returns the raw blob.
func (in *Input) Bytes() []byte {
	return in.data
}

// Len returns the blob length.
func (in *Input) Len() int {
	return len(in.data)
}

// Text returns the blob as a string when it is valid, non-empty UTF-8.
func (in *Input) Text() (string, bool) {
	if !in.textDone {
		in.textDone = true
		in.textOK = len(in.data) > 0 && utf8.Valid(in.data)
	}
	if !in.textOK {
		return "", false
	}
	return string(in.data), true
}

// Integers returns the blob parsed as comma separated base-10 integers.
// The parse is canonical: formatting the result back must reproduce the
// blob exactly, so whitespace, signs on positive numbers, leading zeros,
// "-0" and empty fields all reject the view.
func (in *Input) Integers() ([]int64, bool) {
	if !in.intsDone {
		in.intsDone = true
		in.ints = parseIntegers(in.data)
	}
	return in.ints, in.ints != nil
}

func parseIntegers(data []byte) []int64 {
	if len(data) == 0 {
		return nil
	}
	// Every term takes at least one digit plus a separator.
	numbers := make([]int64, 0, bytes.Count(data, []byte{','})+1)
	for len(data) > 0 {
		field := data
		if i := bytes.IndexByte(data, ','); i >= 0 {
			field, data = data[:i], data[i+1:]
			if len(data) == 0 {
				return nil
			}
		} else {
			data = nil
		}
		if !canonicalInteger(field) {
			return nil
		}
		n, err := strconv.ParseInt(string(field), 10, 64)
		if err != nil {
			return nil
		}
		numbers = append(numbers, n)
	}
	return numbers
}

func canonicalInteger(field []byte) bool {
	digits := field
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
		if len(digits) == 1 && digits[0] == '0' {
			return false
		}
	}
	if len(digits) == 0 {
		return false
	}
	if len(digits) > 1 && digits[0] == '0' {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// formatIntegers is the inverse of parseIntegers.
func formatIntegers(numbers []int64) []byte {
	var buf []byte
	for i, n := range numbers {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, n, 10)
	}
	return buf
}
