// Copyright 2021 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package resulttable

import (
	"io"
	"strings"

	"github.com/juju/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads the outer HTML of a virtualized result grid.
//
// The grid element has two element children: the header row, whose children
// are header cells, and a body wrapper. The first child of the wrapper holds
// the rendered rows and every row holds its cells.
func Parse(r io.Reader) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Annotate(err, "parse result grid")
	}
	body := findFirst(doc, atom.Body)
	if body == nil {
		return nil, errors.New("parse result grid: empty document")
	}
	grid := elementChildren(body)
	if len(grid) == 0 {
		return nil, errors.New("parse result grid: no grid element")
	}

	parts := elementChildren(grid[0])
	if len(parts) < 2 {
		return nil, errors.Errorf("parse result grid: expect header and body, got %d children", len(parts))
	}

	t := &Table{Header: cellTexts(parts[0])}
	wrapper := elementChildren(parts[1])
	if len(wrapper) == 0 {
		return t, nil
	}
	for _, row := range elementChildren(wrapper[0]) {
		t.Rows = append(t.Rows, cellTexts(row))
	}
	return t, nil
}

// ParseString is Parse for an in-memory fragment.
func ParseString(fragment string) (*Table, error) {
	return Parse(strings.NewReader(fragment))
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func elementChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, c)
		}
	}
	return children
}

func cellTexts(row *html.Node) []string {
	cells := elementChildren(row)
	texts := make([]string, 0, len(cells))
	for _, cell := range cells {
		texts = append(texts, textContent(cell))
	}
	return texts
}

// textContent approximates innerText: all descendant text, whitespace collapsed.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
