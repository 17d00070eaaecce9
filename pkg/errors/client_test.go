package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyValidationJoinsMessages(t *testing.T) {
	err := fmt.Errorf("create batch: %w", &HTTPError{Status: 400, Messages: []string{"name is required", "passingYear must be a number"}})

	got := Classify(err)
	require.NotNil(t, got)
	assert.Equal(t, KindValidation, got.Kind)
	assert.Equal(t, "name is required, passingYear must be a number", got.Message)
}

func TestClassifyAuthHidesRawMessage(t *testing.T) {
	for _, status := range []int{401, 403} {
		got := Classify(&HTTPError{Status: status, Messages: []string{"jwt expired at 12:00"}})
		assert.Equal(t, KindAuth, got.Kind)
		assert.Equal(t, MessageSessionExpired, got.Message)
		assert.True(t, IsAuthFailure(got))
	}
}

func TestClassifyServerAndNetwork(t *testing.T) {
	assert.Equal(t, KindServer, Classify(&HTTPError{Status: 502}).Kind)
	assert.Equal(t, KindServer, Classify(&NetworkError{Method: "GET", URL: "x", Timeout: true}).Kind)
	assert.Equal(t, KindServer, Classify(&ParseError{Reason: "missing data"}).Kind)
	assert.Equal(t, MessageTryAgain, Classify(&ParseError{Reason: "missing data"}).Message)
}

func TestClassifyValidationFallsBackToStatusText(t *testing.T) {
	got := Classify(&HTTPError{Status: 409})
	assert.Equal(t, "Conflict", got.Message)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", &HTTPError{Status: 404})))
	assert.False(t, IsNotFound(&HTTPError{Status: 400}))
	assert.True(t, IsTimeout(&NetworkError{Timeout: true}))
	assert.False(t, IsAuthFailure(&HTTPError{Status: 500}))
}
