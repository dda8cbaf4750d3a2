package domain

import "errors"

var (
	// ErrTransport wraps network and HTTP level failures of the GitLab client.
	ErrTransport = errors.New("transport failure")

	// ErrDecode wraps responses that did not match the expected shape.
	ErrDecode = errors.New("decode failure")

	// ErrPrecursorMissing is returned when a child node is upserted before
	// its parent exists.
	ErrPrecursorMissing = errors.New("precursor missing")
)
