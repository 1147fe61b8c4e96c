package imaging

import (
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitWidth(t *testing.T) {
	tests := []struct {
		name       string
		maxWidth   int
		wantWidth  int
		wantHeight int
		rewritten  bool
	}{
		{"no limit", 0, 400, 300, false},
		{"already narrow", 800, 400, 300, false},
		{"exact width", 400, 400, 300, false},
		{"downscale", 200, 200, 150, true},
		{"odd ratio", 100, 100, 75, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestImage(t, "ui-10.png", 400, 300, color.RGBA{0, 128, 255, 255})
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			info, err := FitWidth(path, tt.maxWidth)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, info.Width)
			assert.Equal(t, tt.wantHeight, info.Height)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			if tt.rewritten {
				assert.NotEqual(t, before, after)
				onDisk, err := Inspect(path)
				require.NoError(t, err)
				assert.Equal(t, tt.wantWidth, onDisk.Width)
				assert.Equal(t, tt.wantHeight, onDisk.Height)
			} else {
				assert.Equal(t, before, after, "file must not be rewritten")
			}
		})
	}
}

func TestFitWidth_Errors(t *testing.T) {
	path := createTestImage(t, "ui-11.png", 10, 10, color.Black)

	_, err := FitWidth(path, -1)
	assert.Error(t, err)

	_, err = FitWidth("/nonexistent/ui-0.png", 100)
	assert.Error(t, err)
}
