package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatWindow(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("2 minutes", formatWindow(2*time.Minute))
	assert.Equal("1 minute", formatWindow(time.Minute))
	assert.Equal("1 hour", formatWindow(time.Hour))
	assert.Equal("24 hours", formatWindow(24*time.Hour))
	assert.Equal("90 minutes", formatWindow(90*time.Minute))
}

// The two removal notices are distinct and each names its window.
func TestNoticesNameTheirWindows(t *testing.T) {
	assert := assert.New(t)

	prov := provisionalNotice(2*time.Minute, "golang")
	perm := permanentNotice(24 * time.Hour)

	assert.NotEqual(prov, perm)
	assert.Contains(prov, "2 minutes")
	assert.Contains(prov, "/r/golang")
	assert.Contains(prov, "restored")
	assert.Contains(perm, "24 hours")
	assert.Contains(perm, "permanently")
}
