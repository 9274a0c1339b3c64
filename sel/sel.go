/*
 * sel.go, part of mdsynth.
 *
 * Copyright 2026 The mdsynth developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 */

//Package sel compiles atom-selection query strings and evaluates them
//against a goChem topology, producing groups of atom indexes.
//
//The grammar is a small subset of the selection languages common in
//analysis packages:
//
//	name CA CB            atom names
//	resname ALA GLY       residue names
//	resid 1 3:10          residue ids, with ranges
//	index 0:99            0-based atom indexes, with ranges
//	chain A B             chain identifiers
//	element C N           element symbols
//	protein, backbone, water, hetero, all, none
//	and, or, not, parentheses
//
//Several values after one keyword are alternatives: "name CA CB" selects
//atoms named either CA or CB. Ranges take the form a:b or a-b, both ends
//included.
package sel

import (
	"fmt"
	"strconv"
	"strings"

	chem "github.com/rmera/gochem"
)

// Query is a compiled selection, reusable against any number of
// topologies and safe for concurrent evaluation.
type Query struct {
	src  string
	root node
}

// ParseError describes why a query string failed to compile. Pos is the
// byte offset of the offending token within the query.
type ParseError struct {
	Query string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sel: cannot parse %q at offset %d: %s", e.Query, e.Pos, e.Msg)
}

// Compile parses a query string. The returned Query is independent of
// any topology; resolution happens at Eval time.
func Compile(query string) (*Query, error) {
	toks, err := tokenize(query)
	if err != nil {
		return nil, err
	}
	p := &parser{query: query, toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q after end of expression", p.peek().text)
	}
	return &Query{src: query, root: root}, nil
}

// MustCompile is Compile for queries known good at build time. It panics
// on a malformed query.
func MustCompile(query string) *Query {
	q, err := Compile(query)
	if err != nil {
		panic(err.Error())
	}
	return q
}

func (Q *Query) String() string { return Q.src }

// Eval resolves the query against mol and returns the matching atoms as
// a Group. An empty result is not an error.
func (Q *Query) Eval(mol chem.Atomer) (*Group, error) {
	if mol == nil {
		return nil, fmt.Errorf("sel: Eval: nil topology")
	}
	mask, err := Q.root.eval(mol)
	if err != nil {
		return nil, err
	}
	indexes := make([]int, 0, len(mask))
	for i, in := range mask {
		if in {
			indexes = append(indexes, i)
		}
	}
	return &Group{mol: mol, indexes: indexes}, nil
}

/**** tokens ****/

type token struct {
	text string
	pos  int
}

// tokenize splits on whitespace, with parentheses as their own tokens
// regardless of surrounding space.
func tokenize(query string) ([]token, error) {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{text: query[start:end], pos: start})
			start = -1
		}
	}
	for i, r := range query {
		switch {
		case r == '(' || r == ')':
			flush(i)
			toks = append(toks, token{text: string(r), pos: i})
		case r == ' ' || r == '\t' || r == '\n':
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(query))
	if len(toks) == 0 {
		return nil, &ParseError{Query: query, Pos: 0, Msg: "empty query"}
	}
	return toks, nil
}

/**** parser ****/

// node is one operator or clause of the compiled query. eval returns a
// membership mask over the atoms of mol.
type node interface {
	eval(mol chem.Atomer) ([]bool, error)
}

var keywords = map[string]bool{
	"name":    true,
	"resname": true,
	"resid":   true,
	"index":   true,
	"chain":   true,
	"element": true,
}

var barewords = map[string]bool{
	"all":      true,
	"none":     true,
	"protein":  true,
	"backbone": true,
	"water":    true,
	"hetero":   true,
}

func isOperator(s string) bool {
	return s == "and" || s == "or" || s == "not" || s == "(" || s == ")"
}

type parser struct {
	query string
	toks  []token
	i     int
}

func (p *parser) done() bool { return p.i >= len(p.toks) }

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	p.i++
	return t
}

func (p *parser) errorf(format string, args ...interface{}) error {
	pos := len(p.query)
	if !p.done() {
		pos = p.peek().pos
	}
	return &ParseError{Query: p.query, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.peek().text == "or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binNode{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.peek().text == "and" {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binNode{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.done() {
		return nil, p.errorf("expression ends too early")
	}
	if p.peek().text == "not" {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.done() {
		return nil, p.errorf("expression ends too early")
	}
	t := p.peek()
	switch {
	case t.text == "(":
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.done() || p.peek().text != ")" {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.next()
		return inner, nil
	case keywords[t.text]:
		return p.parseClause()
	case barewords[t.text]:
		p.next()
		return &barewordNode{word: t.text}, nil
	case isOperator(t.text):
		return nil, p.errorf("unexpected %q", t.text)
	default:
		return nil, p.errorf("unknown keyword %q", t.text)
	}
}

// parseClause consumes a keyword and every following value token, i.e.
// everything up to the next keyword, operator or parenthesis.
func (p *parser) parseClause() (node, error) {
	kw := p.next()
	var values []token
	for !p.done() {
		t := p.peek()
		if keywords[t.text] || barewords[t.text] || isOperator(t.text) {
			break
		}
		values = append(values, p.next())
	}
	if len(values) == 0 {
		return nil, p.errorf("keyword %q needs at least one value", kw.text)
	}
	switch kw.text {
	case "name", "resname", "chain", "element":
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v.text] = true
		}
		return &stringClause{field: kw.text, values: set}, nil
	case "resid", "index":
		var ranges []intRange
		for _, v := range values {
			r, err := parseIntRange(v.text)
			if err != nil {
				return nil, &ParseError{Query: p.query, Pos: v.pos,
					Msg: fmt.Sprintf("bad %s value %q: %v", kw.text, v.text, err)}
			}
			ranges = append(ranges, r)
		}
		return &intClause{field: kw.text, ranges: ranges}, nil
	}
	return nil, p.errorf("unknown keyword %q", kw.text) //unreachable
}

type intRange struct {
	lo, hi int
}

func parseIntRange(s string) (intRange, error) {
	cut := strings.Index(s, ":")
	if cut < 0 {
		if i := strings.Index(s[1:], "-"); i >= 0 { //s[1:] so a leading minus is a sign
			cut = i + 1
		}
	}
	if cut < 0 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return intRange{}, err
		}
		return intRange{lo: n, hi: n}, nil
	}
	lo, err := strconv.Atoi(s[:cut])
	if err != nil {
		return intRange{}, err
	}
	hi, err := strconv.Atoi(s[cut+1:])
	if err != nil {
		return intRange{}, err
	}
	if hi < lo {
		return intRange{}, fmt.Errorf("range %d..%d is backwards", lo, hi)
	}
	return intRange{lo: lo, hi: hi}, nil
}

/**** evaluation ****/

type binNode struct {
	op          string
	left, right node
}

func (n *binNode) eval(mol chem.Atomer) ([]bool, error) {
	l, err := n.left.eval(mol)
	if err != nil {
		return nil, err
	}
	r, err := n.right.eval(mol)
	if err != nil {
		return nil, err
	}
	for i := range l {
		if n.op == "and" {
			l[i] = l[i] && r[i]
		} else {
			l[i] = l[i] || r[i]
		}
	}
	return l, nil
}

type notNode struct {
	inner node
}

func (n *notNode) eval(mol chem.Atomer) ([]bool, error) {
	mask, err := n.inner.eval(mol)
	if err != nil {
		return nil, err
	}
	for i := range mask {
		mask[i] = !mask[i]
	}
	return mask, nil
}

type stringClause struct {
	field  string
	values map[string]bool
}

func (n *stringClause) eval(mol chem.Atomer) ([]bool, error) {
	mask := make([]bool, mol.Len())
	for i := range mask {
		at := mol.Atom(i)
		var v string
		switch n.field {
		case "name":
			v = at.Name
		case "resname":
			v = at.MolName
		case "chain":
			v = at.Chain
		case "element":
			v = at.Symbol
		}
		mask[i] = n.values[v]
	}
	return mask, nil
}

type intClause struct {
	field  string
	ranges []intRange
}

func (n *intClause) eval(mol chem.Atomer) ([]bool, error) {
	mask := make([]bool, mol.Len())
	for i := range mask {
		v := i
		if n.field == "resid" {
			v = mol.Atom(i).MolID
		}
		for _, r := range n.ranges {
			if v >= r.lo && v <= r.hi {
				mask[i] = true
				break
			}
		}
	}
	return mask, nil
}

type barewordNode struct {
	word string
}

func (n *barewordNode) eval(mol chem.Atomer) ([]bool, error) {
	mask := make([]bool, mol.Len())
	switch n.word {
	case "all":
		for i := range mask {
			mask[i] = true
		}
	case "none":
		//all false already
	case "protein":
		for i := range mask {
			mask[i] = proteinResidues[mol.Atom(i).MolName]
		}
	case "backbone":
		for i := range mask {
			at := mol.Atom(i)
			mask[i] = proteinResidues[at.MolName] && backboneNames[at.Name]
		}
	case "water":
		for i := range mask {
			mask[i] = waterResidues[mol.Atom(i).MolName]
		}
	case "hetero":
		for i := range mask {
			mask[i] = mol.Atom(i).Het
		}
	}
	return mask, nil
}
