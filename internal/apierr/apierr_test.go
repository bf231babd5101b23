package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	retriable := Retriable("node unreachable")
	wrapped := fmt.Errorf("balance: %w", retriable)
	assert.Same(t, retriable, From(wrapped))

	plain := From(errors.New("essence type not supported"))
	assert.Equal(t, NonRetriableCode, plain.Code)
	assert.False(t, plain.Retriable)
	assert.Equal(t, "essence type not supported", plain.Message)
}

func TestWithDetails(t *testing.T) {
	base := NonRetriable("transaction rejected")
	detailed := base.WithDetails("reason", "invalid signature")

	assert.Nil(t, base.Details)
	assert.Equal(t, "invalid signature", detailed.Details["reason"])
	assert.Contains(t, detailed.Error(), "invalid signature")
}

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	if assert.Len(t, catalog, 2) {
		assert.Equal(t, "non retriable error", catalog[0].Message)
		assert.False(t, catalog[0].Retriable)
		assert.True(t, catalog[1].Retriable)
	}
}
