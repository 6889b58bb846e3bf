package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool indicates the model named a tool the table does not define.
var ErrUnknownTool = errors.New("tools: unknown tool")

// UnknownToolError carries the offending tool name.
type UnknownToolError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tools: unknown tool %q", e.Name)
}

// Is matches ErrUnknownTool.
func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}
