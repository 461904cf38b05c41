// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package seqs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is a sequence file format.
type Format string

// Valid formats.
const (
	FASTA  Format = "fasta"
	FASTQ  Format = "fastq"
	PHYLIP Format = "phylip"
	NEXUS  Format = "nexus"
)

// ParseFormat returns the format named by a string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FASTA, FASTQ, PHYLIP, NEXUS:
		return f, nil
	}
	return "", fmt.Errorf("seqs: unknown sequence format %q", s)
}

// DetectFormat returns the format of a file
// based on its extension.
// An unknown extension is treated as FASTA.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fastq", ".fq":
		return FASTQ
	case ".phy", ".phylip":
		return PHYLIP
	case ".nex", ".nexus", ".nxs":
		return NEXUS
	}
	return FASTA
}

// ReadFile reads a collection of sequences from a file,
// detecting the format from the file extension.
func ReadFile(name string) (*Collection, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c *Collection
	switch DetectFormat(name) {
	case FASTQ:
		c, err = ReadFastq(f)
	case PHYLIP:
		c, err = ReadPhylip(f)
	case NEXUS:
		c, err = ReadNexus(f)
	default:
		c, err = ReadFasta(f)
	}
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return c, nil
}

// WriteFile writes the collection to a file
// in the indicated format.
// FASTQ is an input format
// and cannot be written.
func (c *Collection) WriteFile(name string, format Format) (err error) {
	if format == FASTQ {
		return fmt.Errorf("on file %q: cannot write FASTQ data", name)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	switch format {
	case PHYLIP:
		err = c.WritePhylip(f, nil)
	case NEXUS:
		err = c.WriteNexus(f)
	default:
		err = c.WriteFasta(f)
	}
	if err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
