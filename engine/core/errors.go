package core

import (
	"errors"
)

var (
	ErrNoAdapter          = errors.New("no compatible graphics adapter found")
	ErrNoDevice           = errors.New("failed to create logical device")
	ErrSurfaceLost        = errors.New("presentation surface lost")
	ErrSurfaceOutdated    = errors.New("presentation surface out of date")
	ErrSurfaceTimeout     = errors.New("timed out acquiring surface texture")
	ErrSurfaceUnavailable = errors.New("presentation surface has a zero-sized extent")
	ErrAlreadyInitialized = errors.New("application already initialized")
	ErrUnknown            = errors.New("unknown")
)
