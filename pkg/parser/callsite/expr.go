// Package callsite locates translation-marker calls in a syntax tree and
// canonicalizes their first argument into a TextRecord.
//
// Argument nodes are lowered into a closed set of expression variants
// (StringLit, ObjectLit, CallExpr, OtherExpr). Only literal text is
// extractable: identifiers, template literals, calls and any other runtime
// value lower to OtherExpr and never produce a record.
package callsite

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/blendin/extractor/pkg/parser/tspool"
)

// Expr is a lowered argument expression. The set of implementations is closed.
type Expr interface {
	expr()
}

// StringLit is a string literal with escape sequences decoded.
type StringLit struct {
	Value string
}

// ObjectLit is an object literal. Properties keep source order.
type ObjectLit struct {
	Properties []Property
}

// Property is one member of an object literal. Static is false for computed
// keys, spreads, shorthand properties and methods; Key is empty for those.
type Property struct {
	Key    string
	Static bool
	Value  Expr
}

// CallExpr is a call expression. Callee is the identifier name for bare
// identifier callees and empty otherwise.
type CallExpr struct {
	Callee string
	Args   []Expr
}

// OtherExpr is any expression that is not statically extractable.
type OtherExpr struct {
	NodeType string
}

func (StringLit) expr() {}
func (ObjectLit) expr() {}
func (CallExpr) expr()  {}
func (OtherExpr) expr() {}

// Lower converts a tree-sitter expression node into an Expr.
// Enclosing parentheses are removed first.
func Lower(node *sitter.Node, source []byte) Expr {
	node = tspool.UnwrapParens(node)
	if node == nil {
		return OtherExpr{}
	}

	switch node.Type() {
	case "string":
		return StringLit{Value: CookString(node, source)}
	case "object":
		return lowerObject(node, source)
	case "call_expression":
		return lowerCall(node, source)
	default:
		return OtherExpr{NodeType: node.Type()}
	}
}

func lowerObject(node *sitter.Node, source []byte) ObjectLit {
	var obj ObjectLit

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "comment":
			continue
		case "pair":
			key, static := propertyKey(child.ChildByFieldName("key"), source)
			var value Expr = OtherExpr{}
			if v := child.ChildByFieldName("value"); v != nil {
				value = Lower(v, source)
			}
			obj.Properties = append(obj.Properties, Property{Key: key, Static: static, Value: value})
		default:
			// shorthand_property_identifier, spread_element, method_definition, ...
			obj.Properties = append(obj.Properties, Property{Value: OtherExpr{NodeType: child.Type()}})
		}
	}

	return obj
}

func propertyKey(key *sitter.Node, source []byte) (string, bool) {
	if key == nil {
		return "", false
	}

	switch key.Type() {
	case "property_identifier", "identifier":
		return tspool.GetNodeText(key, source), true
	case "string":
		return CookString(key, source), true
	case "number":
		return NumberKey(tspool.GetNodeText(key, source))
	default:
		// computed_property_name, private_property_identifier
		return "", false
	}
}

func lowerCall(node *sitter.Node, source []byte) CallExpr {
	var call CallExpr

	if fn := node.ChildByFieldName("function"); fn != nil && !isOptionalCall(node) {
		fn = tspool.UnwrapParens(fn)
		if fn.Type() == "identifier" {
			call.Callee = tspool.GetNodeText(fn, source)
		}
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.Type() != "arguments" {
		return call
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "comment" {
			continue
		}
		call.Args = append(call.Args, Lower(arg, source))
	}

	return call
}

// isOptionalCall reports whether node is `f?.(...)`.
func isOptionalCall(node *sitter.Node) bool {
	if node.ChildByFieldName("optional_chain") != nil {
		return true
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "optional_chain", "?.":
			return true
		}
	}
	return false
}
