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

// Package extract walks a Tree-sitter CST for a Python source file and
// enumerates every callable with its exact span, containment hierarchy,
// docstring, and source text, plus the call sites found inside it.
package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/gen-d/pkg/driftmodel"
)

// Result is the output of one extraction pass over a file.
type Result struct {
	Callables []driftmodel.CallableRecord
	CallSites []driftmodel.CallSite
}

// Extract parses sourceText as Python and returns every callable it
// contains (without semantic fingerprints — those are filled in by the
// hasher) plus every call site whose lexical enclosing callable could be
// determined. moduleName may be empty; it is only used as an extra
// qualified-name prefix.
//
// Extract fails with a *driftmodel.ParseError when sourceText is not
// syntactically valid Python.
func Extract(sourceText, filePath, moduleName string) (*Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	content := []byte(sourceText)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &driftmodel.ParseError{FilePath: filePath, Message: fmt.Sprintf("tree-sitter parse: %v", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &driftmodel.ParseError{FilePath: filePath, Message: "empty parse tree"}
	}

	w := &walker{
		content:    content,
		filePath:   filePath,
		moduleName: moduleName,
		idByQName:  make(map[string]string),
	}
	w.walk(root)

	if errCount := countErrorNodes(root); errCount > 0 && len(strings.TrimSpace(sourceText)) > 0 {
		pos := firstErrorPosition(root)
		return nil, &driftmodel.ParseError{
			FilePath: filePath,
			Position: pos,
			Message:  "source does not parse as Python",
		}
	}

	return &w.result, nil
}

type walker struct {
	content    []byte
	filePath   string
	moduleName string

	classStack    []string
	callableStack []string
	callableIDs   []string // parallel to callableStack

	idByQName map[string]string
	result    Result
}

func (w *walker) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class_definition":
		name := fieldText(node, "name", w.content)
		w.classStack = append(w.classStack, name)
		w.walkChildren(node)
		w.classStack = w.classStack[:len(w.classStack)-1]
		return

	case "function_definition":
		w.visitFunction(node)
		return

	case "decorated_definition":
		// The wrapped function_definition handles its own span (including
		// these decorators) by checking its parent.
		w.walkChildren(node)
		return

	case "call":
		w.visitCall(node)
		w.walkChildren(node)
		return
	}

	w.walkChildren(node)
}

func (w *walker) walkChildren(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i))
	}
}

func (w *walker) visitFunction(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		w.walkChildren(node)
		return
	}
	name := string(w.content[nameNode.StartByte():nameNode.EndByte()])

	spanNode := node
	if parent := node.Parent(); parent != nil && parent.Type() == "decorated_definition" {
		spanNode = parent
	}

	isMethod := len(w.classStack) > 0
	className := ""
	if isMethod {
		className = w.classStack[len(w.classStack)-1]
	}

	qname := driftmodel.QualifiedName(w.moduleName, w.classStack, w.callableStack, name)
	id := w.filePath + ":" + qname

	startLine := int(spanNode.StartPoint().Row) + 1
	endLine := int(spanNode.EndPoint().Row) + 1
	sourceText := string(w.content[spanNode.StartByte():spanNode.EndByte()])

	docstring := extractDocstring(node, w.content)

	record := driftmodel.CallableRecord{
		ID:                 id,
		Name:               name,
		FilePath:           w.filePath,
		ClassName:          className,
		EnclosingCallables: append([]string(nil), w.callableStack...),
		IsMethod:           isMethod,
		StartLine:          startLine,
		EndLine:            endLine,
		SourceText:         sourceText,
		Docstring:          docstring,
	}
	w.result.Callables = append(w.result.Callables, record)
	w.idByQName[qname] = id

	// Recurse with this callable pushed, so nested definitions and call
	// sites attribute correctly.
	w.callableStack = append(w.callableStack, name)
	w.callableIDs = append(w.callableIDs, id)
	w.walkChildren(node)
	w.callableStack = w.callableStack[:len(w.callableStack)-1]
	w.callableIDs = w.callableIDs[:len(w.callableIDs)-1]
}

func (w *walker) visitCall(node *sitter.Node) {
	if len(w.callableIDs) == 0 {
		return // module-level call, not inside any callable
	}
	callerID := w.callableIDs[len(w.callableIDs)-1]

	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return
	}

	calleeName := ""
	switch fnNode.Type() {
	case "identifier":
		calleeName = string(w.content[fnNode.StartByte():fnNode.EndByte()])
	case "attribute":
		calleeName = string(w.content[fnNode.StartByte():fnNode.EndByte()])
	default:
		// subscript, call-of-call, lambda literal, etc. — drop the site.
		return
	}

	w.result.CallSites = append(w.result.CallSites, driftmodel.CallSite{
		CallerID:   callerID,
		CalleeName: calleeName,
		CallLine:   int(node.StartPoint().Row) + 1,
	})
}

func fieldText(node *sitter.Node, field string, content []byte) string {
	f := node.ChildByFieldName(field)
	if f == nil {
		return ""
	}
	return string(content[f.StartByte():f.EndByte()])
}

// extractDocstring returns the textual content of fn's docstring, or "" if
// fn's body's first statement is not a bare string-literal expression.
func extractDocstring(fn *sitter.Node, content []byte) string {
	body := fn.ChildByFieldName("body")
	if body == nil || body.Type() != "block" {
		return ""
	}

	var first *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		first = c
		break
	}
	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() != 1 {
		return ""
	}

	expr := first.NamedChild(0)
	switch expr.Type() {
	case "string":
		if isFString(expr, content) {
			return ""
		}
		return stripQuotes(expr, content)
	case "concatenated_string":
		var sb strings.Builder
		for i := 0; i < int(expr.NamedChildCount()); i++ {
			part := expr.NamedChild(i)
			if part.Type() != "string" {
				return ""
			}
			if isFString(part, content) {
				return ""
			}
			sb.WriteString(stripQuotes(part, content))
		}
		return sb.String()
	default:
		return ""
	}
}

// stripQuotes removes the string node's prefix letters and its opening and
// closing quote run (triple or single), preserving all interior text
// including whitespace verbatim.
func stripQuotes(stringNode *sitter.Node, content []byte) string {
	text := string(content[stringNode.StartByte():stringNode.EndByte()])

	i := 0
	for i < len(text) && text[i] != '"' && text[i] != '\'' {
		i++
	}
	if i >= len(text) {
		return ""
	}
	quoteChar := text[i]
	quoteLen := 1
	if i+2 < len(text) && text[i+1] == quoteChar && text[i+2] == quoteChar {
		quoteLen = 3
	}

	start := i + quoteLen
	end := len(text) - quoteLen
	if end < start {
		return ""
	}
	return text[start:end]
}

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

func firstErrorPosition(node *sitter.Node) driftmodel.Position {
	if node.Type() == "ERROR" {
		return driftmodel.Position{Line: int(node.StartPoint().Row) + 1, Column: int(node.StartPoint().Column) + 1}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if pos := firstErrorPosition(node.Child(i)); pos.Line != 0 {
			return pos
		}
	}
	return driftmodel.Position{}
}
