// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package seqs

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteNexus writes the collection
// as a NEXUS file with a single DATA block.
// The collection must be aligned.
func (c *Collection) WriteNexus(w io.Writer) error {
	if !c.Aligned() {
		return fmt.Errorf("nexus: collection is not aligned")
	}

	dt := "DNA"
	if c.Alphabet() == Protein {
		dt = "PROTEIN"
	}

	bw := bufio.NewWriter(w)
	nchar := len(c.recs[c.ids[0]].Seq)
	fmt.Fprintf(bw, "#NEXUS\n\n")
	fmt.Fprintf(bw, "BEGIN DATA;\n")
	fmt.Fprintf(bw, "\tDIMENSIONS NTAX=%d NCHAR=%d;\n", len(c.ids), nchar)
	fmt.Fprintf(bw, "\tFORMAT DATATYPE=%s MISSING=? GAP=-;\n", dt)
	fmt.Fprintf(bw, "\tMATRIX\n")
	for _, id := range c.ids {
		fmt.Fprintf(bw, "\t\t%s\t%s\n", id, c.recs[id].Seq)
	}
	fmt.Fprintf(bw, "\t;\nEND;\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("nexus: %v", err)
	}
	return nil
}

// ReadNexus reads the matrix of the first DATA block
// of a NEXUS file.
// Only the DIMENSIONS, FORMAT, and MATRIX commands
// are interpreted;
// anything else is ignored.
// Interleaved matrices are accepted:
// rows of an already known taxon
// are appended to its sequence.
func ReadNexus(r io.Reader) (*Collection, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("nexus: empty file")
	}
	if !strings.EqualFold(strings.TrimSpace(sc.Text()), "#NEXUS") {
		return nil, fmt.Errorf("nexus: not a NEXUS file")
	}

	var alpha Alphabet
	c := New()
	inMatrix := false
	ln := 1
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if i := strings.Index(line, "["); i >= 0 {
			// bracket comments,
			// only whole ones inside a single line
			if j := strings.Index(line, "]"); j > i {
				line = strings.TrimSpace(line[:i] + line[j+1:])
				if line == "" {
					continue
				}
			}
		}

		if !inMatrix {
			up := strings.ToUpper(line)
			if strings.HasPrefix(up, "FORMAT") {
				if strings.Contains(up, "DATATYPE=PROTEIN") {
					alpha = Protein
				}
				if strings.Contains(up, "DATATYPE=DNA") || strings.Contains(up, "DATATYPE=RNA") || strings.Contains(up, "DATATYPE=NUCLEOTIDE") {
					alpha = Nucleotide
				}
				continue
			}
			if strings.HasPrefix(up, "MATRIX") {
				inMatrix = true
			}
			continue
		}

		if line == ";" || strings.EqualFold(line, "end;") {
			break
		}
		end := strings.HasSuffix(line, ";")
		line = strings.TrimSuffix(line, ";")

		nm, rest, err := nexusName(line)
		if err != nil {
			return nil, fmt.Errorf("nexus: line %d: %v", ln, err)
		}
		seq := strings.Join(strings.Fields(rest), "")
		if _, ok := c.recs[nm]; ok {
			rec := c.recs[nm]
			rec.Seq += seq
			c.recs[nm] = rec
		} else {
			if seq == "" {
				return nil, fmt.Errorf("nexus: line %d: taxon %q without residues", ln, nm)
			}
			if err := c.Add(Record{ID: nm, Seq: seq, Alphabet: alpha}); err != nil {
				return nil, fmt.Errorf("nexus: line %d: %v", ln, err)
			}
		}
		if end {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("nexus: %v", err)
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("nexus: no matrix data")
	}
	return c, nil
}

// NexusName reads a possibly quoted taxon name
// from the start of a matrix row.
func nexusName(line string) (name, rest string, err error) {
	if line[0] != '\'' {
		i := strings.IndexFunc(line, isBlank)
		if i < 0 {
			return line, "", nil
		}
		return line[:i], line[i:], nil
	}
	var sb strings.Builder
	for i := 1; i < len(line); i++ {
		if line[i] != '\'' {
			sb.WriteByte(line[i])
			continue
		}
		if i+1 < len(line) && line[i+1] == '\'' {
			sb.WriteByte('\'')
			i++
			continue
		}
		nm := strings.ReplaceAll(sb.String(), " ", "_")
		return nm, line[i+1:], nil
	}
	return "", "", fmt.Errorf("unterminated quoted name")
}
