package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReporter_Disabled(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")

	reporter, shutdown, err := newReporter(context.Background())
	require.NoError(t, err)
	assert.Nil(t, reporter)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewApp_WiresReporterAndCleanup(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	llmBackend, storeBackend = "mock", "memory"
	t.Cleanup(func() { llmBackend, storeBackend = "", "" })

	a, err := newApp(context.Background())
	require.NoError(t, err)
	require.NotNil(t, a.orch)
	assert.NoError(t, a.cleanup())
}
