// Package termdict is a sorted, in-memory term dictionary. Terms are ordered as unsigned bytes,
// the order automaton term enumeration expects.
package termdict

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"

	u "github.com/araddon/gou"
)

// Dictionary is an immutable sorted set of terms.
type Dictionary struct {
	terms [][]byte
}

// New builds a dictionary from terms in any order; duplicates are dropped.
func New(terms [][]byte) *Dictionary {
	sorted := make([][]byte, len(terms))
	for i, t := range terms {
		sorted[i] = slices.Clone(t)
		if sorted[i] == nil {
			sorted[i] = []byte{}
		}
	}
	slices.SortFunc(sorted, bytes.Compare)
	sorted = slices.CompactFunc(sorted, bytes.Equal)
	return &Dictionary{terms: sorted}
}

func FromStrings(terms ...string) *Dictionary {
	bs := make([][]byte, len(terms))
	for i, t := range terms {
		bs[i] = []byte(t)
	}
	return New(bs)
}

// Load reads one term per line. Blank lines are skipped and a trailing "\r" is trimmed.
func Load(r io.Reader) (*Dictionary, error) {
	terms := make([][]byte, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSuffix(scanner.Bytes(), []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		terms = append(terms, slices.Clone(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("termdict: read terms: %w", err)
	}
	d := New(terms)
	u.Debugf("termdict: loaded %d lines, %d distinct terms", len(terms), d.Len())
	return d, nil
}

// Len returns the number of distinct terms.
func (d *Dictionary) Len() int {
	return len(d.terms)
}

// Term returns the i'th term in sort order.
func (d *Dictionary) Term(i int) []byte {
	return d.terms[i]
}

// Iterator returns a new enumeration positioned before the first term.
func (d *Dictionary) Iterator() *Enum {
	return &Enum{d: d, pos: -1}
}

// Enum walks a Dictionary in order. It satisfies the root package's TermsEnum interface.
type Enum struct {
	d   *Dictionary
	pos int
}

// SeekCeil positions the enum at the smallest term >= target and returns it, or nil if every term
// is smaller.
func (e *Enum) SeekCeil(target []byte) ([]byte, error) {
	e.pos, _ = slices.BinarySearchFunc(e.d.terms, target, bytes.Compare)
	return e.current(), nil
}

// Next advances to the next term and returns it, or nil at the end.
func (e *Enum) Next() ([]byte, error) {
	if e.pos < len(e.d.terms) {
		e.pos++
	}
	return e.current(), nil
}

func (e *Enum) current() []byte {
	if e.pos < 0 || e.pos >= len(e.d.terms) {
		return nil
	}
	return e.d.terms[e.pos]
}
