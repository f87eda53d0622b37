package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"http://127.0.0.1:5000/"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "http://127.0.0.1:5000/"}},
		{"linux", "xdg-open", []string{"http://127.0.0.1:5000/"}},
		{"freebsd", "xdg-open", []string{"http://127.0.0.1:5000/"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := browserCommand(tt.goos, "http://127.0.0.1:5000/")
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFlags(t *testing.T) {
	assert.NotNil(t, Cmd.Flags().Lookup("host"))
	assert.NotNil(t, Cmd.Flags().Lookup("port"))
	assert.NotNil(t, Cmd.Flags().Lookup("open"))
}
