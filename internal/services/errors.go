package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks backend timeout/connection failures. The item stays
	// pending and is retried on the next run.
	ErrTransient = errors.New("transient backend failure")
	// ErrMalformed marks a backend response the pipeline could not use.
	ErrMalformed = errors.New("malformed backend response")
	// ErrQuality marks a content quality failure from the audit stage.
	ErrQuality = errors.New("content quality failure")
	// ErrValidation marks sanitizer/validator rejections; treated like a
	// quality failure for pipeline purposes.
	ErrValidation = errors.New("validation failure")
	// ErrCheckpoint marks a durable-state write failure. Fatal: continuing
	// without progress tracking risks duplicate work on the next resume.
	ErrCheckpoint = errors.New("checkpoint failure")
	// ErrConfiguration marks invalid configuration or input. Fatal at
	// startup, never raised mid-batch.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the run instead of being
// recorded against a single work item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCheckpoint) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
