package lzstring

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tokens produced by the JavaScript lz-string library.
var knownTokens = []struct {
	name  string
	input string
	token string
}{
	{"empty string", "", "Q"},
	{"single char", "a", "IZA"},
	{"repeated char", "aaaaaaaaaa", "IY1o"},
	{"short phrase", "Hello, world", "BIUwNmD2A0AEDukBOYAmQ"},
	{"classic LZW sample", "TOBEORNOTTOBEORTOBEORNOT", "CoeQQgoiBKByLFJGSpwUA"},
	{"empty inventory", `{"inventory":[]}`, "N4IglgdgbgphAuB7ATgTxALgNoF0C+QA"},
	{"one item", `{"inventory":["lamp"]}`, "N4IglgdgbgphAuB7ATgTxALgNogDYEMBbABxAF0BfIA"},
	{"extra field", `{"inventory":["lamp","rusty key"],"turns":3}`, "N4IglgdgbgphAuB7ATgTxALgNogDYEMBbABxABoRkBXAZ3lQAIBrGdAXQviuQhswGYAvkA"},
	{"non-latin text", "héllo wörld ☃", "BYS4NmD2AEDuBvAnMATahgMiA"},
	{"surrogate pair", `{"inventory":["😀"]}`, "N4IglgdgbgphAuB7ATgTxALgNokLwbgAPZAF0BfIA"},
}

func TestCompressToEncodedURIComponent_KnownTokens(t *testing.T) {
	for _, tt := range knownTokens {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.token, CompressToEncodedURIComponent(tt.input))
		})
	}
}

func TestDecompressFromEncodedURIComponent_KnownTokens(t *testing.T) {
	for _, tt := range knownTokens {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecompressFromEncodedURIComponent(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.input, got)
		})
	}
}

func TestRoundTrip_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pieces := []string{"a", "b", " ", "{", "}", `"`, "lamp", "é", "☃", "😀", "\n", "\x00", "inventory"}

	for i := 0; i < 500; i++ {
		var sb strings.Builder
		n := rng.Intn(120)
		for j := 0; j < n; j++ {
			sb.WriteString(pieces[rng.Intn(len(pieces))])
		}
		input := sb.String()

		token := CompressToEncodedURIComponent(input)
		for _, r := range token {
			require.Truef(t, strings.ContainsRune(uriAlphabet, r), "token %q has non URI-safe char %q", token, r)
		}

		got, err := DecompressFromEncodedURIComponent(token)
		require.NoError(t, err, "input %q", input)
		require.Equal(t, input, got)
	}
}

func TestRoundTrip_LongInputWidensCodes(t *testing.T) {
	// Enough distinct substrings to push the code width well past 8 bits.
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteString(string(rune('a' + i%26)))
		sb.WriteString(string(rune('A' + (i*7)%26)))
	}
	input := sb.String()

	got, err := DecompressFromEncodedURIComponent(CompressToEncodedURIComponent(input))
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestDecompress_SpaceReadAsPlus(t *testing.T) {
	token := knownTokens[5].token // contains '+'
	require.Contains(t, token, "+")

	got, err := DecompressFromEncodedURIComponent(strings.ReplaceAll(token, "+", " "))
	require.NoError(t, err)
	assert.Equal(t, knownTokens[5].input, got)
}

func TestDecompress_Corrupt(t *testing.T) {
	undefined := &bitWriter{}
	undefined.writeBits(codeLiteral8, 2)
	undefined.writeBits('a', 8)
	undefined.writeBits(7, 3) // dictionary only holds 4 entries here
	undefined.flush()

	tests := []struct {
		name    string
		token   string
		errText string
	}{
		{"empty", "", "empty token"},
		{"invalid character", "IZ!", "invalid character"},
		{"percent encoded", "N4Ig%2B", "invalid character"},
		{"truncated", "IZ", "ends before end-of-stream"},
		{"truncated long token", "N4IglgdgbgphAuB7ATgTxALgNogDYEMBbAB", "ends before end-of-stream"},
		{"flipped fill bit", "IZB", "non-zero fill bits"},
		{"flipped fill bit in JSON token", "N4IglgdgbgphAuB7ATgTxALgNoF0C+QB", "non-zero fill bits"},
		{"trailing symbol", "IZAA", "trailing symbols"},
		{"undefined dictionary entry", string(undefined.buf), "undefined dictionary entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecompressFromEncodedURIComponent(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

// selfReferencingToken is 'a' followed by n codes that each name the entry
// being defined, so entry k is k+1 copies of 'a'.
func selfReferencingToken(n int) string {
	w := &bitWriter{}
	w.writeBits(codeLiteral8, 2)
	w.writeBits('a', 8)
	dictSize, enlargeIn, numBits := 4, 4, 3
	for i := 0; i < n; i++ {
		w.writeBits(dictSize, numBits)
		dictSize++
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
	w.writeBits(codeEnd, numBits)
	w.flush()
	return string(w.buf)
}

func TestDecompress_OutputLimit(t *testing.T) {
	out, err := DecompressFromEncodedURIComponent(selfReferencingToken(1000))
	require.NoError(t, err)
	assert.Len(t, out, 1001*1002/2)
	assert.Equal(t, strings.Repeat("a", len(out)), out)

	token := selfReferencingToken(2000)
	require.Less(t, len(token), 8192)
	_, err = DecompressFromEncodedURIComponent(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "output exceeds")
}
