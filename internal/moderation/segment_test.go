package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"short",
		"first paragraph\n\nsecond paragraph\n\nthird",
		strings.Repeat("a", 500),
		"\n\n\n\n\n\n",
		"ends with delimiter\n\n",
		"\n\nstarts with delimiter",
		strings.Repeat("para\n\n", 40),
	}

	for _, text := range cases {
		for _, maxLen := range []int{1, 7, 64, 1000} {
			segments := Split(text, maxLen)
			require.Equal(t, text, strings.Join(segments, ""),
				"round trip failed for %q maxLen=%d", text, maxLen)
			for _, s := range segments {
				require.LessOrEqual(t, len(s), maxLen,
					"segment over bound for %q maxLen=%d", text, maxLen)
			}
		}
	}
}

func TestSplit_ShortTextSingleSegment(t *testing.T) {
	require.Equal(t, []string{"hello"}, Split("hello", 100))
	require.Equal(t, []string{""}, Split("", 10))

	// Length exactly maxLen stays whole.
	exact := strings.Repeat("x", 32)
	require.Equal(t, []string{exact}, Split(exact, 32))
}

func TestSplit_BoundaryOverflow(t *testing.T) {
	maxLen := 32
	text := strings.Repeat("a", maxLen+1)

	segments := Split(text, maxLen)
	require.Len(t, segments, 2)
	require.Len(t, segments[0], maxLen)
	require.Len(t, segments[1], 1)
}

func TestSplit_PacksParagraphsGreedily(t *testing.T) {
	// Two 10-byte paragraphs (incl. delimiter) fit one 25-byte segment,
	// the third starts a new one.
	text := "aaaaaaaa\n\nbbbbbbbb\n\ncccccccc"
	segments := Split(text, 25)

	require.Equal(t, []string{"aaaaaaaa\n\nbbbbbbbb\n\n", "cccccccc"}, segments)
}

func TestSplit_HardCutsOversizedParagraph(t *testing.T) {
	text := "tiny\n\n" + strings.Repeat("z", 23)
	segments := Split(text, 10)

	require.Equal(t, []string{"tiny\n\n", "zzzzzzzzzz", "zzzzzzzzzz", "zzz"}, segments)
}

func TestSplit_OnlyDelimiters(t *testing.T) {
	text := "\n\n\n\n\n\n"
	segments := Split(text, 4)

	require.Equal(t, text, strings.Join(segments, ""))
	for _, s := range segments {
		require.LessOrEqual(t, len(s), 4)
	}
}
