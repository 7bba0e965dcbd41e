package render

import "errors"

// ErrRenderFailed is returned when the rendering engine reports a
// failure or produces no output file.
var ErrRenderFailed = errors.New("document rendering failed")
