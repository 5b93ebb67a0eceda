// Package extract pulls reviewable text out of stored attachments.
// Extraction is best effort: unsupported formats and fetch failures
// simply yield no text, they never abort a review.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const maxFetchBytes = 1 << 20 // 1MB of text is plenty for review

// Extractor fetches attachment bytes from their storage URL and turns
// them into plain text where the mime type allows it.
type Extractor struct {
	client *http.Client
}

func New() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Supported reports whether any text can be extracted for a mime type.
func Supported(mime string) bool {
	switch normalizeMime(mime) {
	case "text/plain", "text/markdown", "application/json", "text/html":
		return true
	}
	return false
}

// Text downloads the attachment and extracts its reviewable text. An
// unsupported mime type returns ("", nil); fetch and parse problems
// return an error the caller is expected to swallow.
func (e *Extractor) Text(ctx context.Context, url, mime string) (string, error) {
	kind := normalizeMime(mime)
	if !Supported(kind) {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", err
	}

	switch kind {
	case "text/plain", "text/markdown":
		return string(data), nil
	case "application/json":
		return jsonText(data)
	case "text/html":
		return htmlText(data)
	}
	return "", nil
}

func normalizeMime(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// jsonText collects every string value in the document, walking objects
// in sorted key order so output is deterministic.
func jsonText(data []byte) (string, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", err
	}

	var parts []string
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch val := v.(type) {
		case string:
			if strings.TrimSpace(val) != "" {
				parts = append(parts, val)
			}
		case []interface{}:
			for _, item := range val {
				walk(item)
			}
		case map[string]interface{}:
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(val[k])
			}
		}
	}
	walk(doc)

	return strings.Join(parts, "\n\n"), nil
}

// htmlText strips markup, keeping the text content of the document.
// Script and style bodies are not reviewable text.
func htmlText(data []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", err
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, "\n\n"), nil
}
