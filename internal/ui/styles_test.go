package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "0 B", FormatSize(-10), "negative sizes clamp to zero")
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "1.5 GiB", FormatSize(3<<29))
}

func TestTruncatePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/short", truncatePath("/short", 40))

	long := "/home/user/Projects/very/deep/tree/node_modules"
	got := truncatePath(long, 20)
	assert.Len(t, got, 20)
	assert.Equal(t, "...", got[:3])
	assert.Contains(t, got, "node_modules")

	// Below the floor, paths are returned untouched.
	assert.Equal(t, long, truncatePath(long, 5))
}
