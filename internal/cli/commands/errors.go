package commands

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/pgdao/internal/cli/ui"
)

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

type databaseError struct{ err error }

func (e *databaseError) Error() string { return e.err.Error() }
func (e *databaseError) Unwrap() error { return e.err }

type unknownResourceError struct {
	name  string
	known []string
}

func (e *unknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource %q", e.name)
}

// describeError renders err for the terminal
func describeError(err error, noColor bool) string {
	var (
		cfgErr      *configError
		dbErr       *databaseError
		resourceErr *unknownResourceError
	)

	switch {
	case errors.As(err, &cfgErr):
		return ui.ConfigError(cfgErr.err, noColor)
	case errors.As(err, &dbErr):
		return ui.DatabaseError(dbErr.err, noColor)
	case errors.As(err, &resourceErr):
		return ui.ResourceNotFoundError(resourceErr.name, resourceErr.known, noColor)
	default:
		return ui.FormatError(ui.ErrorOptions{Problem: err.Error(), NoColor: noColor})
	}
}
