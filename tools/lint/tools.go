//go:build tools

// Package lint pins the linters run against go-droppings. It lives in its
// own module so the build tooling never enters the library's go.mod.
//
// From the repository root:
//
//	go run -modfile=tools/lint/go.mod github.com/golangci/golangci-lint/v2/cmd/golangci-lint run ./...
//	go run -modfile=tools/lint/go.mod honnef.co/go/tools/cmd/staticcheck ./...
package lint
