package rules

import (
	"fmt"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// ConfigError reports a rule that cannot be compiled. The rule is skipped; other rules load.
type ConfigError struct {
	IssueCode   string
	HandlerType types.HandlerType
	Reason      string
	Cause       error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid rule %s (%s): %s: %v", e.IssueCode, e.HandlerType, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid rule %s (%s): %s", e.IssueCode, e.HandlerType, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
