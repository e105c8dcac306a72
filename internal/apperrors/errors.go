// Package apperrors holds the error types surfaced by the analysis engine.
package apperrors

import (
	"errors"
	"fmt"
)

// EmptyInputError is returned when the input is empty or whitespace only.
type EmptyInputError struct{}

func (EmptyInputError) Error() string {
	return "input text is empty"
}

// LexiconLoadError means a lexicon or rule table failed to initialize.
// It is fatal at startup.
type LexiconLoadError struct {
	Name string
	Path string
	Err  error
}

func (e *LexiconLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to load lexicon %q from %s: %v", e.Name, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to load lexicon %q: %v", e.Name, e.Err)
}

func (e *LexiconLoadError) Unwrap() error {
	return e.Err
}

// AnalysisError reports an internally inconsistent stage result.
type AnalysisError struct {
	Stage  string
	Detail string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis failed in %s: %s: %v", e.Stage, e.Detail, e.Err)
	}
	return fmt.Sprintf("analysis failed in %s: %s", e.Stage, e.Detail)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func IsEmptyInput(err error) bool {
	var target EmptyInputError
	return errors.As(err, &target)
}

func IsAnalysisError(err error) bool {
	var target *AnalysisError
	return errors.As(err, &target)
}

func IsLexiconLoadError(err error) bool {
	var target *LexiconLoadError
	return errors.As(err, &target)
}
