// Package casefile loads the case descriptions shown to participants.
package casefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/dxcite/internal/cache"
	"golang.org/x/net/html"
)

// ErrCaseNotFound is returned when no file exists for a case index
var ErrCaseNotFound = errors.New("case not found")

// Store reads case_{n}.txt (or case_{n}.html) files from a data directory.
// Case indices start at 0.
type Store struct {
	dir   string
	cache *cache.MemoryCache
}

// NewStore creates a store over dir; loaded descriptions stay in memory for ttl
func NewStore(dir string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		dir:   dir,
		cache: cache.NewMemoryCache(ttl, 2*ttl),
	}
}

// Dir returns the data directory
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the description of case n
func (s *Store) Get(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: index %d", ErrCaseNotFound, n)
	}

	key := "case:" + strconv.Itoa(n)
	if data, ok := s.cache.Get(key); ok {
		return string(data), nil
	}

	text, err := s.load(n)
	if err != nil {
		return "", err
	}

	_ = s.cache.Set(key, []byte(text), 0)
	return text, nil
}

func (s *Store) load(n int) (string, error) {
	base := filepath.Join(s.dir, "case_"+strconv.Itoa(n))

	data, err := os.ReadFile(base + ".txt")
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read case %d: %w", n, err)
	}

	data, err = os.ReadFile(base + ".html")
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s.txt", ErrCaseNotFound, base)
	}
	if err != nil {
		return "", fmt.Errorf("read case %d: %w", n, err)
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("parse case %d: %w", n, err)
	}
	return VisibleText(doc), nil
}

// Count returns the number of consecutive cases available from index 0
func (s *Store) Count() int {
	n := 0
	for s.exists(n) {
		n++
	}
	return n
}

func (s *Store) exists(n int) bool {
	base := filepath.Join(s.dir, "case_"+strconv.Itoa(n))
	for _, ext := range []string{".txt", ".html"} {
		if _, err := os.Stat(base + ext); err == nil {
			return true
		}
	}
	return false
}

// Image returns the path of the case illustration, if there is one
func (s *Store) Image(n int) (string, bool) {
	path := filepath.Join(s.dir, "case_"+strconv.Itoa(n)+".jpg")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// blockElements end a paragraph in the extracted text
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true,
}

// VisibleText extracts text nodes from HTML, skipping scripts/styles.
// Block elements and <br> become line breaks so paragraphs survive.
func VisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			case "br":
				buf.WriteString("\n")
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] && buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n\n") {
			buf.WriteString(strings.Repeat("\n", 2-trailingNewlines(buf.String())))
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

func trailingNewlines(s string) int {
	n := 0
	for n < len(s) && n < 2 && s[len(s)-1-n] == '\n' {
		n++
	}
	return n
}
