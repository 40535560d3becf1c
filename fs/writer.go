// Package fs persists scraped documents as markdown files with YAML
// frontmatter.
package fs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akarpinski/scrapemd"
)

// maxFilenameLen bounds the sanitized title portion of a filename.
const maxFilenameLen = 50

// Ensure Writer implements scrapemd.DocumentWriter at compile time.
var _ scrapemd.DocumentWriter = (*Writer)(nil)

// Writer writes documents into a flat output directory. Filenames derive
// from the document title; collisions are resolved by numeric suffix,
// except when the existing file holds identical content, in which case its
// path is reused and nothing is rewritten.
type Writer struct {
	baseDir string
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteDocument writes doc and returns the path written (or reused).
func (w *Writer) WriteDocument(ctx context.Context, doc *scrapemd.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	base := SanitizeFilename(doc.Title)
	content := FormatDocument(doc)

	path, exists, err := w.resolvePath(base, doc.ContentHash)
	if err != nil {
		return "", err
	}
	if exists {
		return path, nil
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// resolvePath picks the target filename for base. It returns exists=true
// when a file with the same content hash is already on disk.
func (w *Writer) resolvePath(base, contentHash string) (string, bool, error) {
	for n := 0; ; n++ {
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		path := filepath.Join(w.baseDir, name+".md")

		hash, err := readContentHash(path)
		if os.IsNotExist(err) {
			return path, false, nil
		}
		if err != nil {
			return "", false, err
		}
		if contentHash != "" && hash == contentHash {
			return path, true, nil
		}
	}
}

// SanitizeFilename reduces a title to a safe filename stem: runs of
// non-alphanumeric characters collapse to single underscores, the result
// is trimmed and truncated, and an empty result becomes "untitled".
func SanitizeFilename(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	s := strings.Trim(b.String(), "_")
	if len(s) > maxFilenameLen {
		s = strings.Trim(s[:maxFilenameLen], "_")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// FormatDocument renders the document as markdown with YAML frontmatter.
// Header order is fixed: url, title, source, fetched, content_hash, then
// source-specific extras sorted by key.
func FormatDocument(doc *scrapemd.Document) string {
	var b strings.Builder
	b.WriteString("---\n")
	writeField(&b, "url", doc.URL)
	writeField(&b, "title", doc.Title)
	writeField(&b, "source", doc.Source)
	if !doc.FetchedAt.IsZero() {
		writeField(&b, "fetched", doc.FetchedAt.Format("2006-01-02"))
	}
	if doc.ContentHash != "" {
		writeField(&b, "content_hash", doc.ContentHash)
	}

	keys := make([]string, 0, len(doc.Extra))
	for k := range doc.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(&b, k, doc.Extra[k])
	}

	b.WriteString("---\n\n")
	b.WriteString(doc.Markdown)
	if !strings.HasSuffix(doc.Markdown, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

// writeField emits one frontmatter line, yaml-encoding the value so titles
// with colons or quotes stay parseable.
func writeField(b *strings.Builder, key, value string) {
	out, err := yaml.Marshal(value)
	if err != nil {
		out = []byte(value + "\n")
	}
	b.WriteString(key)
	b.WriteString(": ")
	b.Write(out)
}

// readContentHash extracts the content_hash frontmatter field from an
// existing document file. Missing field reads as "".
func readContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	inHeader := false
	for sc.Scan() {
		line := sc.Text()
		if line == "---" {
			if inHeader {
				break
			}
			inHeader = true
			continue
		}
		if !inHeader {
			break
		}
		if rest, ok := strings.CutPrefix(line, "content_hash:"); ok {
			var v string
			if err := yaml.Unmarshal([]byte(strings.TrimSpace(rest)), &v); err == nil {
				return v, nil
			}
			return strings.TrimSpace(rest), nil
		}
	}
	return "", sc.Err()
}
