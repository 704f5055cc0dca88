package shading

import (
	"errors"
	"fmt"

	"github.com/Faultbox/seedexport/internal/host"
)

// ErrUnsupported is wrapped by every UnsupportedShaderError.
var ErrUnsupported = errors.New("unsupported shader")

// UnsupportedShaderError reports a shading node the resolver cannot
// translate. It is recoverable: the plug it feeds is left unset, or the
// material falls back to the default.
type UnsupportedShaderError struct {
	Node       string
	Kind       host.NodeKind
	Plug       string // node.attr the shader feeds, if any
	Model      string // unknown renderer model name, if that is the problem
	Suggestion string // closest known model
}

func (e *UnsupportedShaderError) Error() string {
	msg := fmt.Sprintf("unsupported shading node %s (%s)", e.Node, e.Kind)
	if e.Model != "" {
		msg = fmt.Sprintf("shading node %s uses unknown model %q", e.Node, e.Model)
		if e.Suggestion != "" {
			msg += fmt.Sprintf(", did you mean %q?", e.Suggestion)
		}
	}
	if e.Plug != "" {
		msg += " feeding " + e.Plug
	}
	return msg
}

func (e *UnsupportedShaderError) Unwrap() error {
	return ErrUnsupported
}
