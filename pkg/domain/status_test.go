package domain_test

import (
	"testing"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusMessage_Complete(t *testing.T) {
	seen := map[string]domain.Status{}
	for _, s := range domain.Statuses() {
		msg := domain.StatusMessage(s)
		assert.NotEmpty(t, msg, "status %s", s)

		if prev, dup := seen[msg]; dup {
			t.Errorf("statuses %s and %s share message %q", prev, s, msg)
		}
		seen[msg] = s
	}
}

func TestStatusMessage_Fallback(t *testing.T) {
	assert.Equal(t, domain.GenericFailureMessage, domain.StatusMessage("bogus"))
	assert.Equal(t, domain.GenericFailureMessage, domain.StatusMessage(""))
}

func TestParseStatus(t *testing.T) {
	for _, s := range domain.Statuses() {
		assert.Equal(t, s, domain.ParseStatus(string(s)))
	}
	assert.Equal(t, domain.StatusUnknown, domain.ParseStatus("VALID"))
	assert.Equal(t, domain.StatusUnknown, domain.ParseStatus("timeout"))
}

func TestStatus_Outcomes(t *testing.T) {
	assert.True(t, domain.ActivationSucceeded(domain.StatusValid))
	assert.True(t, domain.ActivationSucceeded(domain.StatusAlreadyActive))
	assert.False(t, domain.ActivationSucceeded(domain.StatusInvalid))

	assert.True(t, domain.DeactivationSucceeded(domain.StatusValid))
	assert.False(t, domain.DeactivationSucceeded(domain.StatusAlreadyActive))

	assert.True(t, domain.StatusRevoked.Rejection())
	assert.False(t, domain.StatusNetworkError.Rejection())
	assert.True(t, domain.StatusServerError.TransportFailure())
}
