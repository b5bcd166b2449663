package activation

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dredimura/surface/pkg/domain"
)

// MaxCodeLength is the longest activation code the form accepts, in runes.
const MaxCodeLength = 48

// Form holds the input state of the activation screen.
type Form struct {
	m *Machine

	mu         sync.Mutex
	code       string
	focused    bool
	rejections int
	unlocked   bool
}

// NewForm attaches a form to m. The input starts focused.
func NewForm(m *Machine) *Form {
	f := &Form{m: m, focused: true, unlocked: m.Phase() == domain.PhaseUnlocked}
	m.OnChange(f.observe)
	return f
}

// SetCode replaces the input. It is upper-cased, truncated and clears the
// machine's last error.
func (f *Form) SetCode(s string) {
	s = strings.ToUpper(s)
	if utf8.RuneCountInString(s) > MaxCodeLength {
		s = string([]rune(s)[:MaxCodeLength])
	}
	f.mu.Lock()
	f.code = s
	f.mu.Unlock()
	f.m.ClearError()
}

// Submit sends the trimmed input for activation.
func (f *Form) Submit() error {
	f.mu.Lock()
	code := strings.TrimSpace(f.code)
	unlocked := f.unlocked
	f.mu.Unlock()

	if code == "" {
		return domain.ErrEmptyCode
	}
	if unlocked {
		return domain.ErrAlreadyActivated
	}
	if f.m.State().Loading {
		return domain.ErrRequestInFlight
	}
	f.m.ClearError()
	return f.m.Activate(code)
}

func (f *Form) Code() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code
}

// Focused reports whether the input should hold keyboard focus.
func (f *Form) Focused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

// Blur drops input focus.
func (f *Form) Blur() {
	f.mu.Lock()
	f.focused = false
	f.mu.Unlock()
}

// Rejections counts failed activation attempts seen by the form.
func (f *Form) Rejections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rejections
}

// Disabled reports whether the input accepts edits.
func (f *Form) Disabled() bool {
	f.mu.Lock()
	unlocked := f.unlocked
	f.mu.Unlock()
	return unlocked || f.m.State().Loading
}

// Error is the message to show under the input, if any.
func (f *Form) Error() string {
	return f.m.State().LastError
}

func (f *Form) observe(c Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch c.To {
	case domain.PhaseUnlocked:
		f.unlocked = true
	case domain.PhaseLocked:
		f.unlocked = false
		if c.Failed {
			f.code = ""
			f.focused = true
			f.rejections++
		}
	}
}
