package extract

import (
	"fmt"
)

// MalformedSourceError reports a document that cannot be opened or has no
// recognizable content container. Location is the 1-based page or slide
// number when the failure is tied to one, 0 otherwise.
type MalformedSourceError struct {
	Format   Format
	Location int
	Err      error
}

func (e *MalformedSourceError) Error() string {
	unit := "page"
	if e.Format == FormatPPTX {
		unit = "slide"
	}
	if e.Location > 0 {
		return fmt.Sprintf("malformed %s source (%s %d): %v", e.Format, unit, e.Location, e.Err)
	}
	return fmt.Sprintf("malformed %s source: %v", e.Format, e.Err)
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }

// EmptyResultError reports a well-formed document that produced no blocks.
type EmptyResultError struct {
	Format Format
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no content extracted from %s source", e.Format)
}

// UnsupportedFormatError is returned by DetectFormat.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Name)
}

func malformed(f Format, location int, err error) error {
	return &MalformedSourceError{Format: f, Location: location, Err: err}
}
