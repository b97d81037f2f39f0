package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Status  string `json:"status" validate:"omitempty,is-job-status"`
	Urgency string `json:"urgency" validate:"omitempty,is-job-urgency"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(sampleRequest{Email: "not-an-email"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "email")
}

func TestCustomStatusRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sampleRequest{Email: "a@b.com", Status: "inProgress"}))
	assert.Error(t, v.Validate(sampleRequest{Email: "a@b.com", Status: "archived"}))

	assert.NoError(t, v.Validate(sampleRequest{Email: "a@b.com", Urgency: "High"}))
	assert.Error(t, v.Validate(sampleRequest{Email: "a@b.com", Urgency: "urgent"}))
}

func TestValidPayloadPasses(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(sampleRequest{Email: "a@b.com"}))
}
