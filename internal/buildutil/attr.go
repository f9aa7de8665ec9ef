// Package buildutil provides utilities for extracting attributes from
// buildtools AST nodes.
//
// It backs the MODULE.bazel descriptor parser, which only needs top-level
// calls and their string attributes.
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// String extracts a string attribute from a function call by name.
// If name is empty and the call has positional arguments, returns the first
// positional string argument.
// Returns empty string if the attribute is not found or not a string.
func String(call *build.CallExpr, name string) string {
	// Handle first positional argument when name is empty
	if name == "" && len(call.List) > 0 {
		if str, ok := call.List[0].(*build.StringExpr); ok {
			return str.Value
		}
		return ""
	}

	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok || lhs.Name != name {
			continue
		}
		if str, ok := assign.RHS.(*build.StringExpr); ok {
			return str.Value
		}
	}
	return ""
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// IsFuncCall returns true if the call is for the specified function name.
func IsFuncCall(call *build.CallExpr, name string) bool {
	return FuncName(call) == name
}

// Calls returns the top-level call statements of f named name, in file order.
func Calls(f *build.File, name string) []*build.CallExpr {
	var calls []*build.CallExpr
	for _, stmt := range f.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if !ok {
			continue
		}
		if IsFuncCall(call, name) {
			calls = append(calls, call)
		}
	}
	return calls
}
