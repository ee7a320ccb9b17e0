//go:build !prod

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Dev(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf

	logger, closeFn, err := Setup(cfg)
	require.NoError(t, err)
	defer closeFn()

	logger.Info("hello", "k", "v")
	logger.Debug("hidden")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Same(t, logger, L())
}
