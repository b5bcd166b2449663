package domain

// Bridge event names. They are the only wire contract between UI and host.
const (
	// UI -> host
	EventGetActivationStatus = "getActivationStatus"
	EventActivateLicense     = "activateLicense"
	EventDeactivateLicense   = "deactivateLicense"
	EventParameterSync       = "parameter.sync"
	EventParameterSet        = "parameter.set"
	EventParameterGesture    = "parameter.gesture"

	// host -> UI
	EventActivationState    = "activationState"
	EventActivationResult   = "activationResult"
	EventDeactivationResult = "deactivationResult"
	EventParameterManifest  = "parameter.manifest"
	EventParameterUpdate    = "parameter.update"
)

// Gesture phases carried by EventParameterGesture.
const (
	GestureBegin = "begin"
	GestureEnd   = "end"
)

// Envelope is the unit a transport carries.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// ActivateRequest is the payload of EventActivateLicense.
type ActivateRequest struct {
	Code string `json:"code" mapstructure:"code"`
}

// ActivationStatePayload is the payload of EventActivationState.
type ActivationStatePayload struct {
	IsConfigured bool            `json:"isConfigured" mapstructure:"isConfigured"`
	IsActivated  bool            `json:"isActivated" mapstructure:"isActivated"`
	Info         *ActivationInfo `json:"info,omitempty" mapstructure:"info"`
}

// ActivationResultPayload is the payload of EventActivationResult and EventDeactivationResult.
type ActivationResultPayload struct {
	Status string          `json:"status" mapstructure:"status"`
	Info   *ActivationInfo `json:"info,omitempty" mapstructure:"info"`
}

// ParameterState describes one parameter as announced by the host.
type ParameterState struct {
	ID      ParameterID   `json:"id" mapstructure:"id"`
	Kind    ParameterKind `json:"kind" mapstructure:"kind"`
	Value   float64       `json:"value" mapstructure:"value"` // normalized; 0 or 1 for booleans
	Range   *Range        `json:"range,omitempty" mapstructure:"range"`
	Default float64       `json:"default" mapstructure:"default"`
}

// ManifestPayload is the payload of EventParameterManifest.
type ManifestPayload struct {
	Parameters []ParameterState `json:"parameters" mapstructure:"parameters"`
}

// ParameterSetPayload is the payload of EventParameterSet.
type ParameterSetPayload struct {
	ID    ParameterID   `json:"id" mapstructure:"id"`
	Kind  ParameterKind `json:"kind" mapstructure:"kind"`
	Value float64       `json:"value" mapstructure:"value"`
}

// GesturePayload is the payload of EventParameterGesture.
type GesturePayload struct {
	ID    ParameterID `json:"id" mapstructure:"id"`
	Phase string      `json:"phase" mapstructure:"phase"`
}

// BoolValue converts a boolean to the normalized wire value.
func BoolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
