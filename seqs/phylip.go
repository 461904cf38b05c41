// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package seqs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadPhylip reads an alignment
// in relaxed PHYLIP format.
//
// The first line contains the number of taxa
// and the number of characters.
// Each of the following lines contains
// a name terminated by blanks
// and the residues of that taxon.
// Interleaved files are accepted:
// after the initial block,
// additional residue lines are assigned to the taxa
// cycling in their original order.
func ReadPhylip(r io.Reader) (*Collection, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	ln := 0
	next := func() (string, bool) {
		for sc.Scan() {
			ln++
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			return line, true
		}
		return "", false
	}

	head, ok := next()
	if !ok {
		return nil, fmt.Errorf("phylip: empty file")
	}
	hf := strings.Fields(head)
	if len(hf) < 2 {
		return nil, fmt.Errorf("phylip: line %d: invalid header", ln)
	}
	ntax, err := strconv.Atoi(hf[0])
	if err != nil || ntax < 1 {
		return nil, fmt.Errorf("phylip: line %d: invalid taxon number %q", ln, hf[0])
	}
	nchar, err := strconv.Atoi(hf[1])
	if err != nil || nchar < 1 {
		return nil, fmt.Errorf("phylip: line %d: invalid character number %q", ln, hf[1])
	}

	names := make([]string, 0, ntax)
	rows := make([]strings.Builder, ntax)
	for i := 0; i < ntax; i++ {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("phylip: line %d: expecting %d taxa, found %d", ln, ntax, i)
		}
		f := strings.Fields(line)
		if len(f) < 2 {
			return nil, fmt.Errorf("phylip: line %d: taxon without residues", ln)
		}
		names = append(names, f[0])
		rows[i].WriteString(strings.Join(f[1:], ""))
	}

	// interleaved continuation blocks
	for i := 0; ; i++ {
		line, ok := next()
		if !ok {
			break
		}
		rows[i%ntax].WriteString(strings.Join(strings.Fields(line), ""))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("phylip: %v", err)
	}

	c := New()
	for i, nm := range names {
		seq := rows[i].String()
		if len(seq) != nchar {
			return nil, fmt.Errorf("phylip: taxon %q: got %d characters, want %d", nm, len(seq), nchar)
		}
		if err := c.Add(Record{ID: nm, Seq: seq}); err != nil {
			return nil, fmt.Errorf("phylip: %v", err)
		}
	}
	return c, nil
}

// WritePhylip writes the collection
// as a relaxed PHYLIP alignment,
// one taxon per line.
// The collection must be aligned.
//
// If a mapping is given,
// the names on the file will be the sanitized forms
// of the record identifiers.
func (c *Collection) WritePhylip(w io.Writer, m *Mapping) error {
	if !c.Aligned() {
		return fmt.Errorf("phylip: collection is not aligned")
	}

	names := make([]string, 0, len(c.ids))
	width := 0
	for _, id := range c.ids {
		nm := id
		if m != nil {
			var err error
			nm, err = m.Sanitized(id)
			if err != nil {
				return fmt.Errorf("phylip: %v", err)
			}
		}
		names = append(names, nm)
		if len(nm) > width {
			width = len(nm)
		}
	}
	width += 2

	bw := bufio.NewWriter(w)
	nchar := len(c.recs[c.ids[0]].Seq)
	fmt.Fprintf(bw, "%d %d\n", len(c.ids), nchar)
	for i, id := range c.ids {
		fmt.Fprintf(bw, "%-*s%s\n", width, names[i], c.recs[id].Seq)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("phylip: %v", err)
	}
	return nil
}
