// internal/countries/countries.go
//
// Reference dataset for the quiz: an ordered, immutable list of
// (country, capital) entries.
//
// Identity:
//   - An entry's ID is its position in the dataset, assigned at load time.
//   - Save codes address entries by their index inside a letter's round, so
//     the order must never change for a given dataset version.
//
// Validation (at load):
//   - names and capitals must be non-empty
//   - no two names may share a normalized key
//   - no letter may have more than MaxRoundSize entries
package countries

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/capitals/internal/normalize"
)

// MaxRoundSize is the largest round a save code can address.
// Bit 31 of the names bitmap is taken by the revealed flag.
const MaxRoundSize = 31

var (
	ErrEmptyDataset   = errors.New("countries: dataset is empty")
	ErrEmptyField     = errors.New("countries: entry has an empty name or capital")
	ErrDuplicateName  = errors.New("countries: duplicate normalized name")
	ErrRoundTooLarge  = errors.New("countries: round exceeds save code capacity")
	ErrInvalidVersion = errors.New("countries: invalid dataset version")
)

// Entry is one (country, capital) record.
type Entry struct {
	ID      int    `yaml:"-" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Capital string `yaml:"capital" json:"capital"`
}

// Dataset is read-only after construction and safe for concurrent use.
type Dataset struct {
	entries []Entry
	keys    []string       // normalized names, parallel to entries
	byKey   map[string]int // normalized name -> index
	version string
}

// file is the on-disk YAML shape.
type file struct {
	Version   int     `yaml:"version"`
	Countries []Entry `yaml:"countries"`
}

// New validates entries and builds a Dataset. IDs are reassigned from order.
func New(entries []Entry) (*Dataset, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyDataset
	}
	d := &Dataset{
		entries: make([]Entry, len(entries)),
		keys:    make([]string, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}
	h := sha256.New()
	for i, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		e.Capital = strings.TrimSpace(e.Capital)
		if e.Name == "" || e.Capital == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrEmptyField, i)
		}
		key := normalize.Key(e.Name)
		if prev, ok := d.byKey[key]; ok {
			return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateName, d.entries[prev].Name, e.Name)
		}
		e.ID = i
		d.entries[i] = e
		d.keys[i] = key
		d.byKey[key] = i
		h.Write([]byte(key))
		h.Write([]byte{0})
	}
	for l := byte('A'); l <= 'Z'; l++ {
		if n := d.RoundSize(l); n > MaxRoundSize {
			return nil, fmt.Errorf("%w: letter %c has %d entries", ErrRoundTooLarge, l, n)
		}
	}
	d.version = hex.EncodeToString(h.Sum(nil))[:12]
	return d, nil
}

// Parse decodes a YAML dataset.
func Parse(data []byte) (*Dataset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse countries: %w", err)
	}
	if f.Version < 0 {
		return nil, ErrInvalidVersion
	}
	return New(f.Countries)
}

// Entries returns the dataset in provider order. Callers must not modify it.
func (d *Dataset) Entries() []Entry { return d.entries }

// Len returns the number of entries.
func (d *Dataset) Len() int { return len(d.entries) }

// Version is a short content hash of the ordered names.
func (d *Dataset) Version() string { return d.version }

// Lookup finds the entry whose normalized name equals normalize.Key(name).
func (d *Dataset) Lookup(name string) (Entry, bool) {
	i, ok := d.byKey[normalize.Key(name)]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Round returns the letter-scoped list: entries whose normalized name starts
// with the normalized letter, in provider order.
func (d *Dataset) Round(letter byte) []Entry {
	lk := normalize.Letter(letter)
	if lk == "" {
		return nil
	}
	var out []Entry
	for i, k := range d.keys {
		if normalize.HasLetter(k, lk) {
			out = append(out, d.entries[i])
		}
	}
	return out
}

// RoundSize counts the entries of a letter's round.
func (d *Dataset) RoundSize(letter byte) int {
	lk := normalize.Letter(letter)
	if lk == "" {
		return 0
	}
	n := 0
	for _, k := range d.keys {
		if normalize.HasLetter(k, lk) {
			n++
		}
	}
	return n
}

// Stats returns per-letter round sizes for 'A'..'Z'.
func (d *Dataset) Stats() map[string]int {
	out := make(map[string]int, 26)
	for l := byte('A'); l <= 'Z'; l++ {
		out[string(rune(l))] = d.RoundSize(l)
	}
	return out
}
