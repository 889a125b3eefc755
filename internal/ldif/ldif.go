// Package ldif reads and writes directory entries in LDIF-style text: a
// "dn:" line followed by "attribute: value" lines, entries separated by
// blank lines. It backs bootstrap imports and archive exports.
package ldif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"dircore/pkg/domain"
)

// Marshal renders entries to LDIF text in the given order.
func Marshal(entries []domain.Entry) []byte {
	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeEntry(&b, entry)
	}
	return []byte(b.String())
}

// Write streams entries to w in LDIF form.
func Write(w io.Writer, entries []domain.Entry) error {
	_, err := w.Write(Marshal(entries))
	return err
}

func writeEntry(b *strings.Builder, entry domain.Entry) {
	fmt.Fprintf(b, "dn: %s\n", entry.DN)
	for _, attr := range entry.Attributes {
		for _, v := range attr.Values {
			fmt.Fprintf(b, "%s: %s\n", attr.Name, v)
		}
	}
}

// Parse reads entries from LDIF text. Lines starting with '#' are comments;
// a blank line ends the current entry. Repeated attribute lines accumulate
// values in their textual order.
func Parse(r io.Reader) ([]domain.Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []domain.Entry
	var current *domain.Entry
	lineNo := 0

	flush := func() {
		if current != nil {
			entries = append(entries, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':' separator", lineNo)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if strings.EqualFold(name, "dn") {
			flush()
			dn, err := domain.ParseDN(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = &domain.Entry{DN: dn}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: attribute line before dn", lineNo)
		}
		appendValue(current, name, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return entries, nil
}

func appendValue(entry *domain.Entry, name, value string) {
	for i, attr := range entry.Attributes {
		if strings.EqualFold(attr.Name, name) {
			entry.Attributes[i].Values = append(entry.Attributes[i].Values, value)
			return
		}
	}
	entry.Attributes = append(entry.Attributes, domain.Attribute{Name: name, Values: []string{value}})
}
