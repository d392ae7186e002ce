// Package lzstring implements the URI-safe flavour of the lz-string
// compression format (compressToEncodedURIComponent /
// decompressFromEncodedURIComponent).
//
// The encoder works on UTF-16 code units so its output is identical to the
// JavaScript library the game server uses. The decoder is stricter than the
// JavaScript one: fill bits after the end-of-stream code must be zero and no
// symbol may follow them, so any corruption of a token is reported instead of
// being silently ignored.
package lzstring

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
)

const (
	uriAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+-$"
	bitsPerChar = 6
)

// Reserved codes at the bottom of the dictionary.
const (
	codeLiteral8  = 0
	codeLiteral16 = 1
	codeEnd       = 2
)

// MaxDecompressedLen bounds decompressed output in UTF-16 units. Dictionary
// growth is bounded by the same limit.
const MaxDecompressedLen = 1 << 20

// ErrCorrupt is wrapped by every decompression failure.
var ErrCorrupt = errors.New("lzstring: corrupt input")

var symbolValue [256]int8

func init() {
	for i := range symbolValue {
		symbolValue[i] = -1
	}
	for i := 0; i < len(uriAlphabet); i++ {
		symbolValue[uriAlphabet[i]] = int8(i)
	}
}

type bitWriter struct {
	buf []byte
	val int
	pos int
}

func (w *bitWriter) writeBit(b int) {
	w.val = w.val<<1 | b
	if w.pos == bitsPerChar-1 {
		w.buf = append(w.buf, uriAlphabet[w.val])
		w.val = 0
		w.pos = 0
		return
	}
	w.pos++
}

// writeBits emits the n low bits of value, least significant first.
func (w *bitWriter) writeBits(value, n int) {
	for i := 0; i < n; i++ {
		w.writeBit(value & 1)
		value >>= 1
	}
}

// flush zero-fills up to and including the next symbol boundary. When the
// stream already ends on a boundary a whole zero symbol is written.
func (w *bitWriter) flush() {
	for {
		w.val <<= 1
		if w.pos == bitsPerChar-1 {
			w.buf = append(w.buf, uriAlphabet[w.val])
			return
		}
		w.pos++
	}
}

type compressor struct {
	out       bitWriter
	dict      map[string]int
	toCreate  map[string]bool
	dictSize  int
	numBits   int
	enlargeIn int
}

// grow advances the code width schedule by one emitted code.
func (c *compressor) grow() {
	c.enlargeIn--
	if c.enlargeIn == 0 {
		c.enlargeIn = 1 << c.numBits
		c.numBits++
	}
}

func (c *compressor) emit(w string) {
	if c.toCreate[w] {
		u := firstUnit(w)
		if u < 256 {
			c.out.writeBits(codeLiteral8, c.numBits)
			c.out.writeBits(int(u), 8)
		} else {
			c.out.writeBits(codeLiteral16, c.numBits)
			c.out.writeBits(int(u), 16)
		}
		c.grow()
		delete(c.toCreate, w)
	} else {
		c.out.writeBits(c.dict[w], c.numBits)
	}
	c.grow()
}

// CompressToEncodedURIComponent compresses s into a token made only of
// characters that need no escaping in a URI component.
func CompressToEncodedURIComponent(s string) string {
	c := &compressor{
		dict:      make(map[string]int),
		toCreate:  make(map[string]bool),
		dictSize:  3,
		numBits:   2,
		enlargeIn: 2,
	}

	var w string
	for _, u := range utf16.Encode([]rune(s)) {
		ch := unitKey(u)
		if _, ok := c.dict[ch]; !ok {
			c.dict[ch] = c.dictSize
			c.dictSize++
			c.toCreate[ch] = true
		}

		wc := w + ch
		if _, ok := c.dict[wc]; ok {
			w = wc
			continue
		}
		c.emit(w)
		c.dict[wc] = c.dictSize
		c.dictSize++
		w = ch
	}
	if w != "" {
		c.emit(w)
	}

	c.out.writeBits(codeEnd, c.numBits)
	c.out.flush()
	return string(c.out.buf)
}

// Dictionary keys hold each UTF-16 unit as two bytes.
func unitKey(u uint16) string {
	return string([]byte{byte(u >> 8), byte(u)})
}

func firstUnit(key string) uint16 {
	return uint16(key[0])<<8 | uint16(key[1])
}

type bitReader struct {
	src   string
	index int
	bit   int
}

func (r *bitReader) readBit() (int, error) {
	if r.index >= len(r.src) {
		return 0, fmt.Errorf("%w: stream ends before end-of-stream code", ErrCorrupt)
	}
	v := int(symbolValue[r.src[r.index]])
	b := (v >> (bitsPerChar - 1 - r.bit)) & 1
	r.bit++
	if r.bit == bitsPerChar {
		r.bit = 0
		r.index++
	}
	return b, nil
}

// readBits reads an n-bit value, least significant bit first.
func (r *bitReader) readBits(n int) (int, error) {
	value := 0
	for i := 0; i < n; i++ {
		b, err := r.readBit()
		if err != nil {
			return 0, err
		}
		value |= b << i
	}
	return value, nil
}

// finish checks the fill after the end-of-stream code. The encoder pads the
// current symbol with zeros, or writes one zero symbol when the end code
// closed a symbol exactly, and stops there.
func (r *bitReader) finish() error {
	if r.index != len(r.src)-1 {
		if r.index >= len(r.src) {
			return fmt.Errorf("%w: missing fill symbol", ErrCorrupt)
		}
		return fmt.Errorf("%w: %d unexpected trailing symbols", ErrCorrupt, len(r.src)-1-r.index)
	}
	mask := 1<<(bitsPerChar-r.bit) - 1
	if int(symbolValue[r.src[r.index]])&mask != 0 {
		return fmt.Errorf("%w: non-zero fill bits", ErrCorrupt)
	}
	return nil
}

func (r *bitReader) readLiteral(code int) ([]uint16, error) {
	width := 8
	if code == codeLiteral16 {
		width = 16
	}
	v, err := r.readBits(width)
	if err != nil {
		return nil, err
	}
	return []uint16{uint16(v)}, nil
}

// DecompressFromEncodedURIComponent reverses CompressToEncodedURIComponent.
// Spaces are read as '+', since query-string decoding turns '+' into a space.
func DecompressFromEncodedURIComponent(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrCorrupt)
	}
	token = strings.ReplaceAll(token, " ", "+")
	for i := 0; i < len(token); i++ {
		if symbolValue[token[i]] < 0 {
			return "", fmt.Errorf("%w: invalid character %q at offset %d", ErrCorrupt, token[i], i)
		}
	}

	r := &bitReader{src: token}
	first, err := r.readBits(2)
	if err != nil {
		return "", err
	}

	var c []uint16
	switch first {
	case codeLiteral8, codeLiteral16:
		if c, err = r.readLiteral(first); err != nil {
			return "", err
		}
	case codeEnd:
		return "", r.finish()
	default:
		return "", fmt.Errorf("%w: stream does not start with a literal", ErrCorrupt)
	}

	// Codes 0-2 are reserved, so real entries start at index 3.
	dict := make([][]uint16, 3, 64)
	dict = append(dict, c)
	enlargeIn := 4
	numBits := 3
	w := c
	result := append([]uint16(nil), c...)

	for {
		code, err := r.readBits(numBits)
		if err != nil {
			return "", err
		}

		switch code {
		case codeLiteral8, codeLiteral16:
			lit, err := r.readLiteral(code)
			if err != nil {
				return "", err
			}
			dict = append(dict, lit)
			code = len(dict) - 1
			enlargeIn--
		case codeEnd:
			if err := r.finish(); err != nil {
				return "", err
			}
			return string(utf16.Decode(result)), nil
		}

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dict):
			entry = dict[code]
		case code == len(dict):
			entry = appendUnit(w, w[0])
		default:
			return "", fmt.Errorf("%w: code %d references undefined dictionary entry (size %d)", ErrCorrupt, code, len(dict))
		}
		if len(result)+len(entry) > MaxDecompressedLen {
			return "", fmt.Errorf("%w: output exceeds %d units", ErrCorrupt, MaxDecompressedLen)
		}
		result = append(result, entry...)

		dict = append(dict, appendUnit(w, entry[0]))
		enlargeIn--
		w = entry

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}

func appendUnit(w []uint16, u uint16) []uint16 {
	out := make([]uint16, len(w)+1)
	copy(out, w)
	out[len(w)] = u
	return out
}
