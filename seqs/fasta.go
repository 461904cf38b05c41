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

// fastaLineLen is the number of residues per line
// used when writing sequences.
const fastaLineLen = 60

// ReadFasta reads a collection of sequences
// in FASTA format.
//
// The identifier of a record is the first blank-delimited token
// of its header line,
// and the rest of the header is stored as the description.
// Blank lines and lines starting with ';' are ignored.
func ReadFasta(r io.Reader) (*Collection, error) {
	c := New()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rec Record
	var sb strings.Builder
	open := false
	hl := 0

	store := func() error {
		if !open {
			return nil
		}
		rec.Seq = sb.String()
		if err := c.Add(rec); err != nil {
			return fmt.Errorf("fasta: header at line %d: %v", hl, err)
		}
		return nil
	}

	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if err := store(); err != nil {
				return nil, err
			}
			h := strings.TrimSpace(line[1:])
			if h == "" {
				return nil, fmt.Errorf("fasta: line %d: empty header", ln)
			}
			rec = Record{ID: h}
			if i := strings.IndexFunc(h, isBlank); i >= 0 {
				rec.ID = h[:i]
				rec.Description = strings.TrimSpace(h[i:])
			}
			sb.Reset()
			open = true
			hl = ln
			continue
		}
		if !open {
			return nil, fmt.Errorf("fasta: line %d: sequence data before first header", ln)
		}
		sb.WriteString(strings.Join(strings.Fields(line), ""))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fasta: %v", err)
	}
	if err := store(); err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("fasta: no sequence records")
	}
	return c, nil
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// WriteFasta writes the collection in FASTA format,
// in addition order.
func (c *Collection) WriteFasta(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, id := range c.ids {
		rec := c.recs[id]
		if rec.Description != "" {
			fmt.Fprintf(bw, ">%s %s\n", rec.ID, rec.Description)
		} else {
			fmt.Fprintf(bw, ">%s\n", rec.ID)
		}
		for s := rec.Seq; s != ""; {
			n := fastaLineLen
			if n > len(s) {
				n = len(s)
			}
			fmt.Fprintf(bw, "%s\n", s[:n])
			s = s[n:]
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("fasta: %v", err)
	}
	return nil
}

// ReadFastq reads a collection of sequences
// in FASTQ format.
// Quality lines are read and discarded,
// only the identifiers and residues are kept.
func ReadFastq(r io.Reader) (*Collection, error) {
	c := New()

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

	for {
		line, ok := next()
		if !ok {
			break
		}
		if line[0] != '@' {
			return nil, fmt.Errorf("fastq: line %d: expecting '@' header", ln)
		}
		h := strings.TrimSpace(line[1:])
		if h == "" {
			return nil, fmt.Errorf("fastq: line %d: empty header", ln)
		}
		rec := Record{ID: h}
		if i := strings.IndexFunc(h, isBlank); i >= 0 {
			rec.ID = h[:i]
			rec.Description = strings.TrimSpace(h[i:])
		}
		hl := ln

		var sb strings.Builder
		for {
			line, ok = next()
			if !ok {
				return nil, fmt.Errorf("fastq: line %d: truncated record", ln)
			}
			if line[0] == '+' {
				break
			}
			sb.WriteString(strings.Join(strings.Fields(line), ""))
		}
		rec.Seq = sb.String()

		for q := 0; q < len(rec.Seq); {
			line, ok = next()
			if !ok {
				return nil, fmt.Errorf("fastq: line %d: truncated quality data", ln)
			}
			q += len(line)
		}

		if err := c.Add(rec); err != nil {
			return nil, fmt.Errorf("fastq: header at line %d: %v", hl, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fastq: %v", err)
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("fastq: no sequence records")
	}
	return c, nil
}
