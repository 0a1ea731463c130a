package render

import "errors"

var (
	// ErrRenderFailed indicates the external renderer could not be run or
	// exited unsuccessfully.
	ErrRenderFailed = errors.New("render failed")
	// ErrNoOutput indicates the renderer ran but no sheet image was found.
	ErrNoOutput = errors.New("no rendered sheet images")
	// ErrUnknownMode indicates an unsupported render mode in configuration.
	ErrUnknownMode = errors.New("unknown render mode")
)
