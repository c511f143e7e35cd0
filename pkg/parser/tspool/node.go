package tspool

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/blendin/extractor/pkg/domain"
)

// GetNodeText returns the source text for the given AST node.
// Returns empty string if the node's byte range exceeds the source length.
func GetNodeText(node *sitter.Node, source []byte) (result string) {
	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	if start > sourceLen || end > sourceLen || start > end {
		return ""
	}

	// Content() slices in Go, but a tree from a different source buffer
	// can still trip bounds inside tree-sitter; treat that as no text.
	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// GetLocation converts a tree-sitter node position to a [domain.Location].
// Line numbers are converted to 1-based indexing.
func GetLocation(node *sitter.Node, filename string) domain.Location {
	start := node.StartPoint()
	end := node.EndPoint()

	return domain.Location{
		File:      filename,
		StartLine: int(start.Row) + 1,
		EndLine:   int(end.Row) + 1,
		StartCol:  int(start.Column),
		EndCol:    int(end.Column),
	}
}

// Walk visits every node under root in pre-order (source order).
// The visitor returns false to skip the children of the current node.
// Traversal uses a tree cursor, so deeply nested trees do not grow the stack.
func Walk(root *sitter.Node, visit func(*sitter.Node) bool) {
	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()

	descend := visit(cursor.CurrentNode())
	for {
		if descend && cursor.GoToFirstChild() {
			descend = visit(cursor.CurrentNode())
			continue
		}
		for !cursor.GoToNextSibling() {
			if !cursor.GoToParent() {
				return
			}
		}
		descend = visit(cursor.CurrentNode())
	}
}

// FirstError returns the first ERROR or MISSING node in source order,
// or nil when the tree is clean.
func FirstError(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsMissing() || n.Type() == "ERROR" {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}

// UnwrapParens strips any number of enclosing parenthesized_expression nodes.
func UnwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" {
		inner := FirstNamedChild(node)
		if inner == nil {
			return node
		}
		node = inner
	}
	return node
}

// FirstNamedChild returns the first named child that is not a comment.
func FirstNamedChild(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "comment" {
			return child
		}
	}
	return nil
}
