// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedNewick is returned when parsing
// an invalid newick tree.
var ErrMalformedNewick = errors.New("malformed newick")

// A NewickOption sets an option
// for the newick parser.
type NewickOption func(*newickParser)

// KeepInternalLabels makes the parser store
// any internal node label as a plain label.
// By default,
// an internal label that can be read as a number
// is stored as the support value of the node,
// the convention used by most inference programs.
func KeepInternalLabels() NewickOption {
	return func(p *newickParser) {
		p.keepLabels = true
	}
}

// Newick reads a tree in newick
// (parenthetical) format:
// a single tree terminated by a semicolon,
// with optional branch lengths after a ':' character,
// optional quoted labels,
// and bracketed comments
// (which are ignored).
//
// Parsing errors wrap ErrMalformedNewick
// and report the byte offset of the problem.
func Newick(r io.Reader, opts ...NewickOption) (*Tree, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("newick: %v", err)
	}
	p := &newickParser{buf: buf, t: New()}
	for _, o := range opts {
		o(p)
	}

	if err := p.tree(); err != nil {
		return nil, err
	}
	if err := p.t.Validate(); err != nil {
		return nil, fmt.Errorf("newick: %v: %w", err, ErrMalformedNewick)
	}
	return p.t, nil
}

type newickParser struct {
	buf        []byte
	pos        int
	t          *Tree
	keepLabels bool
}

func (p *newickParser) error(msg string) error {
	return fmt.Errorf("newick: at byte %d: %s: %w", p.pos, msg, ErrMalformedNewick)
}

// Peek returns the next meaningful byte
// without consuming it,
// skipping blanks and bracketed comments.
func (p *newickParser) peek() (byte, error) {
	for p.pos < len(p.buf) {
		c := p.buf[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '[':
			end := p.pos
			for ; end < len(p.buf); end++ {
				if p.buf[end] == ']' {
					break
				}
			}
			if end >= len(p.buf) {
				return 0, p.error("unclosed comment")
			}
			p.pos = end + 1
		default:
			return c, nil
		}
	}
	return 0, p.error("unexpected end of data")
}

func (p *newickParser) tree() error {
	if err := p.node(-1); err != nil {
		return err
	}
	c, err := p.peek()
	if err != nil {
		return err
	}
	if c != ';' {
		return p.error(fmt.Sprintf("got %q, expecting ';'", c))
	}
	p.pos++

	// only blanks and comments after the semicolon
	if _, err := p.peek(); err == nil {
		return p.error("data after the tree")
	}
	return nil
}

// Node reads a subtree
// and adds it as a child of the given parent.
func (p *newickParser) node(parent int) error {
	c, err := p.peek()
	if err != nil {
		return err
	}

	if c != '(' {
		// a terminal
		label, err := p.label()
		if err != nil {
			return err
		}
		if label == "" {
			return p.error("expecting terminal label")
		}
		length, err := p.length()
		if err != nil {
			return err
		}
		if _, dup := p.t.terms[label]; dup {
			return p.error(fmt.Sprintf("repeated terminal %q", label))
		}
		if _, err := p.t.Add(parent, length, label); err != nil {
			return p.error(err.Error())
		}
		return nil
	}

	p.pos++
	id, err := p.t.Add(parent, 0, "")
	if err != nil {
		return p.error(err.Error())
	}
	for {
		if err := p.node(id); err != nil {
			return err
		}
		c, err := p.peek()
		if err != nil {
			return err
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == ')' {
			p.pos++
			break
		}
		return p.error(fmt.Sprintf("got %q, expecting ',' or ')'", c))
	}

	label, err := p.label()
	if err != nil {
		return err
	}
	if label != "" {
		if sup, err := strconv.ParseFloat(label, 64); err == nil && !p.keepLabels {
			if err := p.t.SetSupport(id, sup); err != nil {
				return p.error(err.Error())
			}
		} else {
			p.t.nodes[id].label = label
		}
	}
	length, err := p.length()
	if err != nil {
		return err
	}
	if parent >= 0 {
		p.t.nodes[id].length = length
	}
	return nil
}

// Label reads a node label,
// either a bare token
// or a single quoted string
// with the quote escaped by doubling it.
// An empty label is valid.
func (p *newickParser) label() (string, error) {
	c, err := p.peek()
	if err != nil {
		return "", err
	}

	if c == '\'' {
		p.pos++
		var sb strings.Builder
		for {
			if p.pos >= len(p.buf) {
				return "", p.error("unterminated quoted label")
			}
			c := p.buf[p.pos]
			if c == '\'' {
				if p.pos+1 < len(p.buf) && p.buf[p.pos+1] == '\'' {
					sb.WriteByte('\'')
					p.pos += 2
					continue
				}
				p.pos++
				return sb.String(), nil
			}
			sb.WriteByte(c)
			p.pos++
		}
	}

	var sb strings.Builder
	for p.pos < len(p.buf) {
		c := p.buf[p.pos]
		if strings.IndexByte("(),:;[]' \t\n\r", c) >= 0 {
			break
		}
		sb.WriteByte(c)
		p.pos++
	}
	return sb.String(), nil
}

// Length reads an optional branch length,
// a non-negative real after a ':' character.
func (p *newickParser) length() (float64, error) {
	c, err := p.peek()
	if err != nil {
		return 0, err
	}
	if c != ':' {
		return 0, nil
	}
	p.pos++

	if _, err := p.peek(); err != nil {
		return 0, err
	}
	start := p.pos
	for p.pos < len(p.buf) {
		c := p.buf[p.pos]
		if strings.IndexByte("(),:;[] \t\n\r", c) >= 0 {
			break
		}
		p.pos++
	}
	tok := string(p.buf[start:p.pos])
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		p.pos = start
		return 0, p.error(fmt.Sprintf("invalid branch length %q", tok))
	}
	if v < 0 {
		p.pos = start
		return 0, p.error(fmt.Sprintf("negative branch length %v", v))
	}
	return v, nil
}

// Newick writes the tree in newick format,
// with the children of each node in their stored order,
// support values as internal node labels,
// branch lengths in their shortest decimal form,
// and a terminating semicolon.
func (t *Tree) Newick(w io.Writer) error {
	if t.IsEmpty() {
		return fmt.Errorf("newick: empty tree")
	}

	bw := bufio.NewWriter(w)
	t.writeNode(bw, t.root)
	bw.WriteString(";\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("newick: %v", err)
	}
	return nil
}

func (t *Tree) writeNode(bw *bufio.Writer, id int) {
	n := t.nodes[id]
	if len(n.children) > 0 {
		bw.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				bw.WriteByte(',')
			}
			t.writeNode(bw, c)
		}
		bw.WriteByte(')')
	}
	if n.hasSup {
		bw.WriteString(strconv.FormatFloat(n.support, 'g', -1, 64))
	} else if n.label != "" {
		bw.WriteString(quoteLabel(n.label))
	}
	if n.parent >= 0 {
		bw.WriteByte(':')
		bw.WriteString(strconv.FormatFloat(n.length, 'g', -1, 64))
	}
}

// QuoteLabel quotes a label
// if it contains any character
// with a meaning in the newick format.
func quoteLabel(label string) string {
	if strings.IndexAny(label, "(),:;[]' \t\n\r") < 0 {
		return label
	}
	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}
