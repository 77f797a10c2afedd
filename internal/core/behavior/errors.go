package behavior

import "errors"

// Engine-specific errors
var (
	ErrAgentExists       = errors.New("agent already registered")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrUnknownNodeType   = errors.New("unknown node type")
	ErrUnknownCondition  = errors.New("unknown condition")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidDefinition = errors.New("invalid tree definition")
)
