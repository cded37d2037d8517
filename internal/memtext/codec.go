// Package memtext converts between the addressed hex-line text format of a
// Leo flash image (".mem") and a flat sequence of 32-bit words.
//
// Each line looks like
//
//	@0020 5a a5 5a a5 5a a5 5a a5 00 00 04 04 ...
//
// The leading address label is informational only: word offsets are derived
// from line order. Bytes are grouped four at a time, most significant first.
package memtext

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/leosyscfg/internal/format"
	"github.com/joshuapare/leosyscfg/pkg/types"
)

const (
	// WordsPerLine is how many words Encode emits per line.
	WordsPerLine = 8

	// AddressPrefix starts every line's address label.
	AddressPrefix = '@'

	// maxLineLen bounds a single input line; images written by the vendor
	// tooling use 32 bytes per line, far below this.
	maxLineLen = 1 << 20
)

// Decode reads a text image and returns its words in file order.
func Decode(r io.Reader) ([]uint32, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLen)

	var words []uint32
	lineNum := 0
	for sc.Scan() {
		lineNum++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		words, err = appendLine(words, fields[1:], lineNum)
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("memtext: read: %w", err)
	}
	return words, nil
}

// Unmarshal decodes a text image held in memory.
func Unmarshal(data []byte) ([]uint32, error) {
	return Decode(bytes.NewReader(data))
}

// appendLine packs the byte tokens of one line into words.
func appendLine(words []uint32, tokens []string, lineNum int) ([]uint32, error) {
	if len(tokens)%format.WordSize != 0 {
		return nil, types.Errorf(types.ErrKindMalformedLine,
			"line %d: %d byte tokens is not a multiple of %d", lineNum, len(tokens), format.WordSize)
	}

	var raw [1]byte
	for i := 0; i < len(tokens); i += format.WordSize {
		var w uint32
		for _, tok := range tokens[i : i+format.WordSize] {
			if len(tok) != 2 {
				return nil, types.Errorf(types.ErrKindMalformedLine,
					"line %d: byte token %q is not two hex digits", lineNum, tok)
			}
			if _, err := hex.Decode(raw[:], []byte(tok)); err != nil {
				return nil, types.Wrap(types.ErrKindMalformedLine, err,
					"line %d: byte token %q", lineNum, tok)
			}
			w = w<<8 | uint32(raw[0])
		}
		words = append(words, w)
	}
	return words, nil
}

// Encode writes words as text, eight words per line. The address label of
// each line is the byte offset of its first word.
func Encode(w io.Writer, words []uint32) error {
	bw := bufio.NewWriter(w)
	var word [format.WordSize]byte
	var digits [2]byte

	for i, v := range words {
		if i%WordsPerLine == 0 {
			if _, err := fmt.Fprintf(bw, "%c%04x", AddressPrefix, i*format.WordSize); err != nil {
				return err
			}
		}

		word[0], word[1], word[2], word[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
		for j := range word {
			hex.Encode(digits[:], word[j:j+1])
			bw.WriteByte(' ')
			bw.Write(digits[:])
		}

		if i%WordsPerLine == WordsPerLine-1 || i == len(words)-1 {
			bw.WriteString(" \n")
		}
	}
	return bw.Flush()
}

// Marshal encodes words into a new buffer.
func Marshal(words []uint32) []byte {
	var buf bytes.Buffer
	buf.Grow(len(words) * 13)
	// bytes.Buffer writes never fail.
	_ = Encode(&buf, words)
	return buf.Bytes()
}
