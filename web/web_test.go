package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemServesIndex(t *testing.T) {
	fs, err := FileSystem()
	require.NoError(t, err)

	assert.True(t, fs.Exists("/", "/index.html"))
	assert.False(t, fs.Exists("/", "/missing.html"))
}
