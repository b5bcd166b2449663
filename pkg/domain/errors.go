package domain

import "errors"

// ErrHostAbsent is returned when a transport has no host attached.
// Callers are expected to fall back to standalone mode, not to fail.
var ErrHostAbsent = errors.New("host not present")

// ErrUnknownParameter is returned when a parameter id is not declared by the host
// or not mounted on the surface.
var ErrUnknownParameter = errors.New("unknown parameter")

// ErrDuplicateParameter is returned when a binding for the same id is mounted twice.
var ErrDuplicateParameter = errors.New("parameter already mounted")

// ErrKindMismatch is returned when a parameter is addressed with the wrong kind
// (e.g. toggling a continuous parameter).
var ErrKindMismatch = errors.New("parameter kind mismatch")

// ErrSurfaceLocked is returned when input reaches a gated control surface.
var ErrSurfaceLocked = errors.New("control surface is locked")

// ErrEmptyCode is returned when an activation code is empty after trimming.
var ErrEmptyCode = errors.New("activation code is empty")

// ErrRequestInFlight is returned when an activation request is already pending.
var ErrRequestInFlight = errors.New("activation request already in flight")

// ErrActivationNotConfigured is returned when license gating is not compiled into the build.
var ErrActivationNotConfigured = errors.New("activation not configured")

// ErrAlreadyActivated is returned when activating an already unlocked surface.
var ErrAlreadyActivated = errors.New("already activated")

// ErrNotActivated is returned when deactivating a surface that is not unlocked.
var ErrNotActivated = errors.New("not activated")

// ErrActivationNotFound is returned when no activation record exists in a store.
var ErrActivationNotFound = errors.New("activation record not found")

// ErrPresetNotFound is returned when a preset id cannot be found in the library.
var ErrPresetNotFound = errors.New("preset not found")

// ErrMalformedPayload is returned when a bridge payload cannot be decoded.
var ErrMalformedPayload = errors.New("malformed payload")
