package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/envble/internal/testutils"
)

func TestSelftestChecks(t *testing.T) {
	assert.NoError(t, checkEncoding())
	assert.NoError(t, checkPayload())
	assert.NoError(t, checkLifecycle(testutils.NewQuietLogger()))
}

func TestRunSelftest(t *testing.T) {
	var out bytes.Buffer
	selftestCmd.SetOut(&out)
	defer selftestCmd.SetOut(nil)

	err := runSelftest(selftestCmd, nil)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "PASS")
	assert.NotContains(t, out.String(), "FAIL")
}
