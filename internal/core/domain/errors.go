package domain

import "errors"

var (
	ErrGeneration = errors.New("text generation failed")
	ErrSQL        = errors.New("sql execution failed")
	ErrOffTopic   = errors.New("query does not reference any allowed table")
	ErrEmptyQuery = errors.New("empty query")
	ErrDryRun     = errors.New("dry run: query not executed")
)
