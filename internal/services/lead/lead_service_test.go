package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOutcome(t *testing.T) {
	assert.True(t, ValidOutcome(OutcomeSuccess))
	assert.True(t, ValidOutcome(OutcomeFail))
	assert.True(t, ValidOutcome(OutcomeNew))

	assert.False(t, ValidOutcome(""))
	assert.False(t, ValidOutcome("done"))
	assert.False(t, ValidOutcome("SUCCESS"))
}

func TestOutcomeTerminal(t *testing.T) {
	assert.True(t, OutcomeSuccess.Terminal())
	assert.True(t, OutcomeFail.Terminal())

	// A skip returns the lead to the pool and earns nothing
	assert.False(t, OutcomeNew.Terminal())
}
