package services

import "errors"

// Sector service errors
var (
	ErrNoSectorSelected = errors.New("no sector selected")
	ErrUnknownFormat    = errors.New("unknown export format")
)
