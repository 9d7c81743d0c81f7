// Package wordlist loads word lists from files and player-entered text.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadWords reads one word per line from path and keeps the words accepted by
// the filter for lang.
func LoadWords(path, lang string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	words, err := ReadWords(file, FilterForLang(lang))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// ReadWords reads one word per line. Lines are trimmed and lowercased; blank,
// rejected and repeated words are skipped. Only the first whitespace-separated
// field is used, so frequency lists ("word 1234") load as-is.
func ReadWords(r io.Reader, keep FilterFunc) ([]string, error) {
	seen := map[string]struct{}{}
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		word := strings.ToLower(fields[0])
		if keep != nil && !keep(word) {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// ParseText splits free-form text on whitespace into lowercased words,
// keeping the first occurrence of each.
func ParseText(text string) []string {
	seen := map[string]struct{}{}
	var words []string
	for _, field := range strings.Fields(text) {
		word := strings.ToLower(field)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	return words
}
