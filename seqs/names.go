// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package seqs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrAmbiguousMapping is returned when the space
	// of sanitized identifiers is exhausted.
	ErrAmbiguousMapping = errors.New("ambiguous identifier mapping")

	// ErrUnknownIdentifier is returned when a name
	// has no entry in an identifier mapping.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// A Mapping is a bijection
// between the identifiers of a collection
// and sanitized names accepted by external analysis tools,
// that is names of a bounded length
// made only of ASCII letters,
// digits,
// and the '_' character.
type Mapping struct {
	maxLen int
	toSan  map[string]string
	toOrig map[string]string
}

// NewMapping creates a mapping
// for the identifiers of a collection,
// each sanitized and truncated to maxLen characters
// (a zero or negative maxLen means no length limit).
//
// The mapping is a deterministic function
// of the collection order.
// Identifiers that collide after sanitization
// are disambiguated with a numeric suffix,
// so for example with a limit of 8 characters
// "Homo_sapiens_long_name_1" and "Homo_sapiens_long_name_2"
// become "Homo_sa1" and "Homo_sa2".
// If the suffix space is exhausted
// it returns ErrAmbiguousMapping.
func NewMapping(c *Collection, maxLen int) (*Mapping, error) {
	ids := c.IDs()
	base := make([]string, len(ids))
	count := make(map[string]int, len(ids))
	for i, id := range ids {
		b := sanitize(id)
		if maxLen > 0 && len(b) > maxLen {
			b = b[:maxLen]
		}
		base[i] = b
		count[b]++
	}

	m := &Mapping{
		maxLen: maxLen,
		toSan:  make(map[string]string, len(ids)),
		toOrig: make(map[string]string, len(ids)),
	}
	suffix := make(map[string]int)
	for i, id := range ids {
		b := base[i]
		if count[b] == 1 {
			if _, taken := m.toOrig[b]; !taken {
				m.toSan[id] = b
				m.toOrig[b] = id
				continue
			}
		}
		san, err := m.nextFree(b, suffix)
		if err != nil {
			return nil, fmt.Errorf("seqs: mapping: identifier %q: %w", id, err)
		}
		m.toSan[id] = san
		m.toOrig[san] = id
	}
	return m, nil
}

// nextFree searches the smallest numeric suffix
// that makes a free sanitized name for a base.
func (m *Mapping) nextFree(b string, suffix map[string]int) (string, error) {
	for n := suffix[b] + 1; ; n++ {
		s := strconv.Itoa(n)
		if m.maxLen > 0 && len(s) >= m.maxLen {
			return "", ErrAmbiguousMapping
		}
		t := b
		if m.maxLen > 0 && len(t) > m.maxLen-len(s) {
			t = t[:m.maxLen-len(s)]
		}
		cand := t + s
		if _, taken := m.toOrig[cand]; !taken {
			suffix[b] = n
			return cand, nil
		}
	}
}

// Sanitized returns the sanitized form of an identifier.
func (m *Mapping) Sanitized(id string) (string, error) {
	san, ok := m.toSan[id]
	if !ok {
		return "", fmt.Errorf("seqs: mapping: %q: %w", id, ErrUnknownIdentifier)
	}
	return san, nil
}

// Original returns the identifier behind a sanitized name.
func (m *Mapping) Original(san string) (string, error) {
	id, ok := m.toOrig[san]
	if !ok {
		return "", fmt.Errorf("seqs: mapping: %q: %w", san, ErrUnknownIdentifier)
	}
	return id, nil
}

// Len returns the number of pairs in the mapping.
func (m *Mapping) Len() int {
	return len(m.toSan)
}

// Sanitize replaces every character outside
// ASCII letters,
// digits,
// and the '_' character.
func sanitize(id string) string {
	var sb strings.Builder
	for _, r := range id {
		ok := (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '_'
		if ok {
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte('_')
	}
	return sb.String()
}
