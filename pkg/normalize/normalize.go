// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalize reduces a callable's source text to a canonical form
// that is invariant under reformatting, comment edits, and docstring edits,
// but sensitive to any change in statements, identifiers, operators, or
// structure. The canonical text is what the hasher feeds into SHA-256.
package normalize

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Error wraps a parse failure encountered while normalizing a callable's
// source text.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "normalize: " + e.Message
}

// Normalize parses callableSource (the verbatim text of one callable,
// decorators through the end of its body) and returns its canonical text:
// docstrings stripped, comments stripped, and whitespace collapsed to a
// single-space token stream.
//
// Source with syntax errors still normalizes: tree-sitter recovers a
// partial tree and its tokens form the canonical text. Normalize fails only
// when the parser yields no usable tree.
func Normalize(callableSource string) (string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	content := []byte(callableSource)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("tree-sitter parse: %v", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return "", &Error{Message: "empty parse tree"}
	}
	if root.HasError() && countErrorNodes(root) > 0 && root.ChildCount() == 0 {
		return "", &Error{Message: "source does not parse"}
	}

	var tokens []string
	walk(root, content, &tokens)

	return strings.Join(tokens, " "), nil
}

func countErrorNodes(node *sitter.Node) int {
	count := 0
	if node.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrorNodes(node.Child(i))
	}
	return count
}

// walk appends the canonical token stream for node (and its subtree) to out.
// Comments are dropped entirely. Function/class bodies have their leading
// docstring statement stripped, with a "pass" placeholder emitted if that
// was the body's only statement.
func walk(node *sitter.Node, content []byte, out *[]string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "comment":
		return

	case "block":
		walkBlock(node, content, out)
		return
	}

	if node.ChildCount() == 0 {
		text := content[node.StartByte():node.EndByte()]
		if len(strings.TrimSpace(string(text))) > 0 {
			*out = append(*out, string(text))
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), content, out)
	}
}

// walkBlock handles a function/class/control-flow body. Only blocks whose
// immediate parent is a function_definition or class_definition are
// eligible for docstring stripping, per spec: the first statement of every
// function and every class.
func walkBlock(node *sitter.Node, content []byte, out *[]string) {
	parent := node.Parent()
	eligible := parent != nil && (parent.Type() == "function_definition" || parent.Type() == "class_definition")

	statements := namedStatements(node)

	docIdx := -1
	if eligible && len(statements) > 0 && isDocstringStatement(statements[0], content) {
		docIdx = 0
	}

	remaining := 0
	for i := range statements {
		if i == docIdx {
			continue
		}
		remaining++
	}

	if docIdx >= 0 && remaining == 0 {
		*out = append(*out, "pass")
		return
	}

	// Walk all children in original order (not just named statements) so
	// punctuation/indentation markers that matter structurally are still
	// visited, skipping only the identified docstring statement.
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if docIdx >= 0 && child == statements[docIdx] {
			continue
		}
		walk(child, content, out)
	}
}

// namedStatements returns the named children of a block, excluding comments.
func namedStatements(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// isDocstringStatement reports whether node is a bare string-literal
// expression statement: an exact structural check, not a regex on source
// text, so a trailing statement that merely looks like a string literal but
// isn't the first statement is never mistaken for a docstring.
func isDocstringStatement(node *sitter.Node, content []byte) bool {
	if node.Type() != "expression_statement" {
		return false
	}
	if node.NamedChildCount() != 1 {
		return false
	}
	expr := node.NamedChild(0)
	switch expr.Type() {
	case "string":
		return !isFString(expr, content)
	case "concatenated_string":
		for i := 0; i < int(expr.NamedChildCount()); i++ {
			part := expr.NamedChild(i)
			if part.Type() == "string" && isFString(part, content) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// isFString inspects the string node's prefix (the characters before the
// opening quote) for an f/F marker. f-strings are never docstrings.
func isFString(stringNode *sitter.Node, content []byte) bool {
	text := content[stringNode.StartByte():stringNode.EndByte()]
	for _, b := range text {
		switch b {
		case '"', '\'':
			return false
		case 'f', 'F':
			return true
		case 'r', 'R', 'b', 'B', 'u', 'U':
			continue
		default:
			return false
		}
	}
	return false
}
