package template

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a structurally invalid template. A batch that receives
// one is rejected before any product is processed.
type ConfigurationError struct {
	Template string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid template %q: %s", e.Template, strings.Join(e.Problems, "; "))
}
