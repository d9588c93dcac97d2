package approval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogWithDefaultsStampsUnsetTime(t *testing.T) {
	before := time.Now().UTC()
	l := Log{Module: "vendor.commission", RefID: "v-1", ActorID: "u-1", Action: ActionSubmit}.withDefaults()

	assert.False(t, l.At.IsZero())
	assert.False(t, l.At.Before(before))
}

func TestLogWithDefaultsKeepsExplicitTime(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l := Log{Module: "vendor.commission", RefID: "v-1", ActorID: "u-1", Action: ActionApprove, At: at}.withDefaults()

	assert.Equal(t, at, l.At)
}
