package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "dialogue.context_window")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidProviders returns the completion providers sixhats can build
func ValidProviders() []string {
	return []string{"anthropic", "echo"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateCompletion()...)
	errs = append(errs, c.validateDialogue()...)
	errs = append(errs, c.validateRender()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateWeb()...)
	errs = append(errs, c.validateBatch()...)
	return errs
}

func (c *Config) validateCompletion() []ValidationError {
	var errs []ValidationError

	if !slices.Contains(ValidProviders(), c.Completion.Provider) {
		errs = append(errs, ValidationError{
			Field:   "completion.provider",
			Value:   c.Completion.Provider,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidProviders(), ", ")),
		})
	}
	if c.Completion.MaxTokens <= 0 {
		errs = append(errs, ValidationError{
			Field:   "completion.max_tokens",
			Value:   c.Completion.MaxTokens,
			Message: "must be positive",
		})
	}
	if c.Completion.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "completion.timeout_seconds",
			Value:   c.Completion.TimeoutSeconds,
			Message: "must be non-negative",
		})
	}
	if c.Completion.BaseURL != "" &&
		!strings.HasPrefix(c.Completion.BaseURL, "http://") &&
		!strings.HasPrefix(c.Completion.BaseURL, "https://") {
		errs = append(errs, ValidationError{
			Field:   "completion.base_url",
			Value:   c.Completion.BaseURL,
			Message: "must be an http or https URL",
		})
	}

	return errs
}

func (c *Config) validateDialogue() []ValidationError {
	var errs []ValidationError

	if len(c.Dialogue.DefaultOrder) == 0 {
		errs = append(errs, ValidationError{
			Field:   "dialogue.default_order",
			Value:   c.Dialogue.DefaultOrder,
			Message: "must name at least one hat",
		})
	}
	for i, id := range c.Dialogue.DefaultOrder {
		if !hat.ID(id).Valid() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("dialogue.default_order[%d]", i),
				Value:   id,
				Message: "is not one of blue, white, red, black, yellow, green",
			})
		}
	}
	if c.Dialogue.ContextWindow < 0 {
		errs = append(errs, ValidationError{
			Field:   "dialogue.context_window",
			Value:   c.Dialogue.ContextWindow,
			Message: "must be non-negative",
		})
	}

	return errs
}

func (c *Config) validateRender() []ValidationError {
	var errs []ValidationError

	if c.Render.Width < 0 {
		errs = append(errs, ValidationError{
			Field:   "render.width",
			Value:   c.Render.Width,
			Message: "must be non-negative",
		})
	}
	if c.Render.SummaryPreview <= 0 {
		errs = append(errs, ValidationError{
			Field:   "render.summary_preview",
			Value:   c.Render.SummaryPreview,
			Message: "must be positive",
		})
	}

	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB <= 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	} else if c.Logging.MaxSizeMB > maxLogSizeMB {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errs
}

func (c *Config) validateWeb() []ValidationError {
	if c.Web.Addr == "" {
		return []ValidationError{{
			Field:   "web.addr",
			Value:   c.Web.Addr,
			Message: "must not be empty",
		}}
	}
	return nil
}

func (c *Config) validateBatch() []ValidationError {
	const maxParallel = 32
	if c.Batch.MaxParallel < 1 || c.Batch.MaxParallel > maxParallel {
		return []ValidationError{{
			Field:   "batch.max_parallel",
			Value:   c.Batch.MaxParallel,
			Message: fmt.Sprintf("must be between 1 and %d", maxParallel),
		}}
	}
	return nil
}
