package render

import "errors"

// ErrTemplateNotFound is returned when a template name is not part of the
// loaded template set.
var ErrTemplateNotFound = errors.New("template not found")
