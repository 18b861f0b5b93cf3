//go:build tools
// +build tools

// Package tools pins the code generators used by go:generate (mockgen)
// so that go.mod and go.sum track them.
package chat_live

import (
	_ "go.uber.org/mock/mockgen"
)
