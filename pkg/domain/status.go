package domain

// Status is the terminal result code of a host license operation.
type Status string

const (
	StatusValid         Status = "valid"
	StatusAlreadyActive Status = "already_active"
	StatusInvalid       Status = "invalid"
	StatusRevoked       Status = "revoked"
	StatusExpired       Status = "expired"
	StatusMaxReached    Status = "max_reached"
	StatusNetworkError  Status = "network_error"
	StatusServerError   Status = "server_error"
	StatusNotConfigured Status = "not_configured"
	StatusNotActivated  Status = "not_activated"
	StatusUnknown       Status = "unknown"
)

// GenericFailureMessage is shown for any status without a dedicated message.
const GenericFailureMessage = "Unknown error"

var statusMessages = map[Status]string{
	StatusValid:         "Activation successful",
	StatusAlreadyActive: "Already activated",
	StatusInvalid:       "Invalid activation code",
	StatusRevoked:       "This license has been revoked",
	StatusExpired:       "This license has expired",
	StatusMaxReached:    "Maximum activations reached for this license",
	StatusNetworkError:  "Network error, please check your connection",
	StatusServerError:   "Server error, please try again later",
	StatusNotConfigured: "Activation not configured",
	StatusNotActivated:  "Not activated",
	StatusUnknown:       GenericFailureMessage,
}

// Statuses lists the full vocabulary in a stable order.
func Statuses() []Status {
	return []Status{
		StatusValid,
		StatusAlreadyActive,
		StatusInvalid,
		StatusRevoked,
		StatusExpired,
		StatusMaxReached,
		StatusNetworkError,
		StatusServerError,
		StatusNotConfigured,
		StatusNotActivated,
		StatusUnknown,
	}
}

// ParseStatus maps a wire string to a Status. Unrecognised input yields StatusUnknown.
func ParseStatus(s string) Status {
	st := Status(s)
	if _, ok := statusMessages[st]; ok {
		return st
	}
	return StatusUnknown
}

// StatusMessage returns the user-facing message for a status.
// It never fails: unknown codes map to GenericFailureMessage.
func StatusMessage(s Status) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return GenericFailureMessage
}

// ActivationSucceeded reports whether an activation result unlocks the surface.
func ActivationSucceeded(s Status) bool {
	return s == StatusValid || s == StatusAlreadyActive
}

// DeactivationSucceeded reports whether a deactivation result releases the license.
func DeactivationSucceeded(s Status) bool {
	return s == StatusValid
}

// Rejection reports whether the host refused the code itself (as opposed to a transport failure).
func (s Status) Rejection() bool {
	switch s {
	case StatusInvalid, StatusRevoked, StatusExpired, StatusMaxReached:
		return true
	}
	return false
}

// TransportFailure reports whether the host could not reach the license server.
func (s Status) TransportFailure() bool {
	return s == StatusNetworkError || s == StatusServerError
}
