package moderation

import "strings"

// paragraphDelimiter separates paragraphs in submitted text. Splitting
// keeps the delimiter attached to the preceding chunk so the original
// text is reconstructible byte-for-byte.
const paragraphDelimiter = "\n\n"

// Split breaks text into ordered segments of at most maxLen bytes such
// that joining the segments reproduces the input exactly. Paragraphs are
// packed greedily into each segment; a single paragraph longer than
// maxLen is hard-cut into maxLen-sized slices.
func Split(text string, maxLen int) []string {
	if maxLen < 1 {
		maxLen = 1
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	var segments []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			segments = append(segments, buf.String())
			buf.Reset()
		}
	}

	for _, para := range strings.SplitAfter(text, paragraphDelimiter) {
		if para == "" {
			// SplitAfter leaves a trailing empty chunk when the text
			// ends with the delimiter.
			continue
		}

		if buf.Len()+len(para) <= maxLen {
			buf.WriteString(para)
			continue
		}

		flush()

		if len(para) <= maxLen {
			buf.WriteString(para)
			continue
		}

		for len(para) > maxLen {
			segments = append(segments, para[:maxLen])
			para = para[maxLen:]
		}
		if para != "" {
			segments = append(segments, para)
		}
	}

	flush()
	return segments
}
