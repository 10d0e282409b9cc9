// Package safexml parses untrusted XML into a small element tree with hard
// bounds on input size, nesting depth, and accumulated character data.
//
// DOCTYPE declarations that only reference an external DTD are tolerated
// (Evernote exports always carry one) but any internal subset is refused,
// so entity definitions (the "billion laughs" vector) never exist; any
// reference to an undeclared entity is a syntax error in strict mode.
// External entities and DTDs are never resolved because encoding/xml has no
// mechanism to fetch them.
package safexml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedInput is returned when a document is structurally valid
	// XML but violates a safety bound (depth, node count, text size).
	ErrMalformedInput = errors.New("safexml: input exceeds safety bounds")

	// ErrDTDForbidden is returned when the document defines entities or
	// carries a DOCTYPE internal subset. A DOCTYPE that only points at an
	// external DTD is allowed; the DTD is never fetched.
	ErrDTDForbidden = errors.New("safexml: DTD entity definitions are not allowed")
)

// Parsing limits. Exceeding any of them aborts the parse with ErrMalformedInput.
const (
	maxDepth     = 100
	maxNodes     = 500_000
	maxTextBytes = 64 << 20 // 64 MiB of accumulated character data
)

// Node is one element in the parsed tree.
type Node struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []Child
}

// Child is either an element or a run of character data, in document order.
type Child struct {
	Elem *Node  // nil for character data
	Text string // set when Elem is nil
}

// Parse decodes data into an element tree rooted at the document element.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	// Reject any declared charset we cannot read natively rather than
	// guessing. UTF-8 and its ASCII subset pass through unchanged.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "utf-8", "utf8", "us-ascii", "ascii":
			return input, nil
		}
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}

	var (
		root      *Node
		stack     []*Node
		nodeCount int
		textBytes int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("safexml: %w", err)
		}

		switch t := tok.(type) {
		case xml.Directive:
			if err := checkDirective(t); err != nil {
				return nil, err
			}
		case xml.StartElement:
			if len(stack) >= maxDepth {
				return nil, fmt.Errorf("%w: element depth exceeds %d", ErrMalformedInput, maxDepth)
			}
			nodeCount++
			if nodeCount > maxNodes {
				return nil, fmt.Errorf("%w: more than %d elements", ErrMalformedInput, maxNodes)
			}
			n := &Node{Name: t.Name, Attr: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("safexml: multiple document elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, Child{Elem: n})
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("safexml: unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			textBytes += len(t)
			if textBytes > maxTextBytes {
				return nil, fmt.Errorf("%w: character data exceeds %d bytes", ErrMalformedInput, maxTextBytes)
			}
			cur := stack[len(stack)-1]
			cur.Children = append(cur.Children, Child{Text: string(t)})
		}
	}

	if root == nil {
		return nil, fmt.Errorf("safexml: no document element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("safexml: unexpected EOF inside <%s>", stack[len(stack)-1].Name.Local)
	}
	return root, nil
}

// checkDirective rejects any directive that can define entities. A bare
// external-DTD DOCTYPE (`<!DOCTYPE root SYSTEM "...">`) passes: real-world
// Evernote exports always declare one, and nothing resolves it. An internal
// subset (anything bracketed) or a standalone ENTITY declaration does not.
func checkDirective(d xml.Directive) error {
	s := strings.TrimSpace(string(d))
	switch {
	case hasPrefixFold(s, "ENTITY"):
		return ErrDTDForbidden
	case hasPrefixFold(s, "DOCTYPE"):
		if strings.Contains(s, "[") {
			return ErrDTDForbidden
		}
	}
	return nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// All returns every descendant element (including n itself) whose local name
// matches, in document order, ignoring namespaces.
func (n *Node) All(local string) []*Node {
	return n.collect(func(e *Node) bool { return e.Name.Local == local })
}

// AllNS is like All but also requires an exact namespace match.
func (n *Node) AllNS(space, local string) []*Node {
	return n.collect(func(e *Node) bool {
		return e.Name.Space == space && e.Name.Local == local
	})
}

func (n *Node) collect(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(e *Node)
	walk = func(e *Node) {
		if match(e) {
			out = append(out, e)
		}
		for _, c := range e.Children {
			if c.Elem != nil {
				walk(c.Elem)
			}
		}
	}
	walk(n)
	return out
}

// Child returns the first direct element child with the given local name,
// or nil.
func (n *Node) Child(local string) *Node {
	for _, c := range n.Children {
		if c.Elem != nil && c.Elem.Name.Local == local {
			return c.Elem
		}
	}
	return nil
}

// Text returns the character data directly inside n, excluding descendants.
func (n *Node) Text() string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.Elem == nil {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// DeepText concatenates all character data under n in document order,
// descending through nested elements. Inline markup inside a paragraph
// therefore reads in its original order.
func (n *Node) DeepText() string {
	var b strings.Builder
	var walk func(e *Node)
	walk = func(e *Node) {
		for _, c := range e.Children {
			if c.Elem != nil {
				walk(c.Elem)
			} else {
				b.WriteString(c.Text)
			}
		}
	}
	walk(n)
	return b.String()
}
