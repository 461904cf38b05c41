// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package seqs implements an ordered collection
// of biological sequences,
// the source data of a phylogenetic analysis.
//
// Records are kept in the order in which they were added,
// so any file written from a collection
// is deterministic.
package seqs

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Alphabet is the residue alphabet of a sequence.
type Alphabet string

// Valid alphabets.
const (
	Nucleotide Alphabet = "nucleotide"
	Protein    Alphabet = "protein"
)

// DetectAlphabet returns the most likely alphabet
// of a residue string.
// A sequence in which at least 90% of the non-gap residues
// are in ACGTUN is reported as nucleotide.
func DetectAlphabet(seq string) Alphabet {
	var nuc, tot int
	for _, r := range seq {
		if r == '-' || r == '.' || r == '?' {
			continue
		}
		tot++
		if strings.ContainsRune("ACGTUN", unicode.ToUpper(r)) {
			nuc++
		}
	}
	if tot == 0 {
		return Nucleotide
	}
	if nuc*10 >= tot*9 {
		return Nucleotide
	}
	return Protein
}

// A Record is a single sequence with its identifier.
type Record struct {
	// ID is the identifier of the sequence
	// and must be unique inside a collection.
	// It cannot contain blank characters.
	ID string

	// Description is a free text description
	// of the sequence,
	// usually the rest of a FASTA header.
	Description string

	// Seq is the residue string.
	// In an aligned collection
	// gaps are indicated with the '-' character.
	Seq string

	// Alphabet of the sequence.
	Alphabet Alphabet
}

// A Collection is an ordered set of sequence records.
type Collection struct {
	ids  []string
	recs map[string]Record
}

// New creates a new empty collection.
func New() *Collection {
	return &Collection{
		recs: make(map[string]Record),
	}
}

// Add adds a record to the end of the collection.
// The record must have a non-empty identifier
// without blank characters,
// a non-empty sequence,
// and the identifier must not be in use.
// If the record has no alphabet,
// it is detected from the sequence.
func (c *Collection) Add(rec Record) error {
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		return fmt.Errorf("seqs: empty sequence identifier")
	}
	if strings.IndexFunc(rec.ID, unicode.IsSpace) >= 0 {
		return fmt.Errorf("seqs: sequence %q: identifier with blanks", rec.ID)
	}
	if _, dup := c.recs[rec.ID]; dup {
		return fmt.Errorf("seqs: sequence %q: repeated identifier", rec.ID)
	}
	if rec.Seq == "" {
		return fmt.Errorf("seqs: sequence %q: empty sequence", rec.ID)
	}
	if strings.IndexFunc(rec.Seq, unicode.IsSpace) >= 0 {
		return fmt.Errorf("seqs: sequence %q: sequence with blanks", rec.ID)
	}
	if rec.Alphabet == "" {
		rec.Alphabet = DetectAlphabet(rec.Seq)
	}
	c.ids = append(c.ids, rec.ID)
	c.recs[rec.ID] = rec
	return nil
}

// Remove removes a record from the collection.
// It returns false if the identifier is not in the collection.
func (c *Collection) Remove(id string) bool {
	if _, ok := c.recs[id]; !ok {
		return false
	}
	delete(c.recs, id)
	i := slices.Index(c.ids, id)
	c.ids = slices.Delete(c.ids, i, i+1)
	return true
}

// Rename changes the identifier of a record,
// keeping its position in the collection.
// The old identifier must exist
// and the new one must be free.
func (c *Collection) Rename(oldID, newID string) error {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return fmt.Errorf("seqs: empty sequence identifier")
	}
	if strings.IndexFunc(newID, unicode.IsSpace) >= 0 {
		return fmt.Errorf("seqs: sequence %q: identifier with blanks", newID)
	}
	rec, ok := c.recs[oldID]
	if !ok {
		return fmt.Errorf("seqs: sequence %q: not in collection", oldID)
	}
	if newID == oldID {
		return nil
	}
	if _, dup := c.recs[newID]; dup {
		return fmt.Errorf("seqs: sequence %q: repeated identifier", newID)
	}
	rec.ID = newID
	delete(c.recs, oldID)
	c.recs[newID] = rec
	c.ids[slices.Index(c.ids, oldID)] = newID
	return nil
}

// SetSequence replaces the residue string of a record.
// It returns true if the sequence was changed.
func (c *Collection) SetSequence(id, seq string) (bool, error) {
	rec, ok := c.recs[id]
	if !ok {
		return false, fmt.Errorf("seqs: sequence %q: not in collection", id)
	}
	if seq == "" {
		return false, fmt.Errorf("seqs: sequence %q: empty sequence", id)
	}
	if strings.IndexFunc(seq, unicode.IsSpace) >= 0 {
		return false, fmt.Errorf("seqs: sequence %q: sequence with blanks", id)
	}
	if rec.Seq == seq {
		return false, nil
	}
	rec.Seq = seq
	rec.Alphabet = DetectAlphabet(seq)
	c.recs[id] = rec
	return true, nil
}

// SetDescription changes the description of a record.
// It returns true if the description was changed.
func (c *Collection) SetDescription(id, desc string) (bool, error) {
	rec, ok := c.recs[id]
	if !ok {
		return false, fmt.Errorf("seqs: sequence %q: not in collection", id)
	}
	if rec.Description == desc {
		return false, nil
	}
	rec.Description = desc
	c.recs[id] = rec
	return true, nil
}

// Record returns the record with a given identifier.
func (c *Collection) Record(id string) (Record, bool) {
	rec, ok := c.recs[id]
	return rec, ok
}

// IDs returns the identifiers of the collection
// in addition order.
func (c *Collection) IDs() []string {
	return slices.Clone(c.ids)
}

// Len returns the number of records in the collection.
func (c *Collection) Len() int {
	return len(c.ids)
}

// Alphabet returns the alphabet of the collection.
// If any record is a protein,
// the whole collection is treated as protein data.
func (c *Collection) Alphabet() Alphabet {
	for _, rec := range c.recs {
		if rec.Alphabet == Protein {
			return Protein
		}
	}
	return Nucleotide
}

// Aligned returns true if the collection
// can be used as an alignment,
// that is it has at least two sequences,
// all of the same positive length.
func (c *Collection) Aligned() bool {
	if len(c.ids) < 2 {
		return false
	}
	n := len(c.recs[c.ids[0]].Seq)
	if n == 0 {
		return false
	}
	for _, id := range c.ids {
		if len(c.recs[id].Seq) != n {
			return false
		}
	}
	return true
}

// Ungapped returns a copy of the collection
// with all gap characters removed.
func (c *Collection) Ungapped() *Collection {
	nc := New()
	for _, id := range c.ids {
		rec := c.recs[id]
		var sb strings.Builder
		for _, r := range rec.Seq {
			if r == '-' || r == '.' {
				continue
			}
			sb.WriteRune(r)
		}
		rec.Seq = sb.String()
		nc.ids = append(nc.ids, id)
		nc.recs[id] = rec
	}
	return nc
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	nc := New()
	nc.ids = slices.Clone(c.ids)
	for id, rec := range c.recs {
		nc.recs[id] = rec
	}
	return nc
}
