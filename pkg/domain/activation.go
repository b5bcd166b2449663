package domain

// ActivationInfo is the host's snapshot of a stored activation.
// The UI never constructs or mutates it; it only keeps the latest copy.
type ActivationInfo struct {
	ActivationCode     string `json:"activationCode" mapstructure:"activationCode"`
	MachineID          string `json:"machineId" mapstructure:"machineId"`
	ActivatedAt        string `json:"activatedAt" mapstructure:"activatedAt"`
	ExpiresAt          string `json:"expiresAt,omitempty" mapstructure:"expiresAt"`
	CurrentActivations int    `json:"currentActivations" mapstructure:"currentActivations"`
	MaxActivations     int    `json:"maxActivations" mapstructure:"maxActivations"`
	IsValid            bool   `json:"isValid" mapstructure:"isValid"`
}

// Phase is the activation state machine's current mode.
type Phase string

const (
	PhaseUnconfigured Phase = "unconfigured" // Gating not compiled in; surface always usable
	PhaseLocked       Phase = "locked"       // Configured, not activated; surface gated
	PhaseActivating   Phase = "activating"   // Activation request in flight; surface gated
	PhaseUnlocked     Phase = "unlocked"     // Configured and activated
	PhaseDeactivating Phase = "deactivating" // Deactivation request in flight
)

// Phases lists every phase in declaration order.
func Phases() []Phase {
	return []Phase{PhaseUnconfigured, PhaseLocked, PhaseActivating, PhaseUnlocked, PhaseDeactivating}
}

// Interactive reports whether the control surface accepts input in this phase.
func (p Phase) Interactive() bool {
	return p != PhaseLocked && p != PhaseActivating
}

// Request identifies which license operation is in flight.
type Request string

const (
	RequestNone       Request = ""
	RequestActivate   Request = "activate"
	RequestDeactivate Request = "deactivate"
)

// ActivationState is the UI's cache of the host's license state.
type ActivationState struct {
	Configured bool            `json:"isConfigured"`
	Activated  bool            `json:"isActivated"`
	Loading    bool            `json:"isLoading"`
	Pending    Request         `json:"pending,omitempty"`
	LastStatus Status          `json:"lastStatus,omitempty"`
	LastError  string          `json:"lastError,omitempty"`
	Info       *ActivationInfo `json:"info,omitempty"`
}

// Phase derives the state machine phase from the cached flags.
func (s ActivationState) Phase() Phase {
	switch {
	case !s.Configured:
		return PhaseUnconfigured
	case s.Loading && s.Pending == RequestActivate:
		return PhaseActivating
	case s.Loading && s.Pending == RequestDeactivate:
		return PhaseDeactivating
	case s.Activated:
		return PhaseUnlocked
	default:
		return PhaseLocked
	}
}

// Interactive reports whether the control surface accepts input.
func (s ActivationState) Interactive() bool {
	return s.Phase().Interactive()
}

// Clone returns a copy that does not share the Info pointer.
func (s ActivationState) Clone() ActivationState {
	if s.Info != nil {
		info := *s.Info
		s.Info = &info
	}
	return s
}
