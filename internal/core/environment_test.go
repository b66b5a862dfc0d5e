package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("production"))
	assert.Equal(t, Staging, ParseEnvironment("staging"))
	assert.Equal(t, Testing, ParseEnvironment("testing"))
	assert.Equal(t, Development, ParseEnvironment("prod"))
	assert.True(t, Production.IsProduction())
	assert.False(t, Staging.IsProduction())
}

func TestDecode(t *testing.T) {
	var e Environment
	require.NoError(t, e.Decode("staging"))
	assert.Equal(t, Staging, e)
}
