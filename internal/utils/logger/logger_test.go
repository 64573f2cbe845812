package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		environment        string
		debug, trace, info bool
		want               zerolog.Level
	}{
		{"dev", false, false, false, zerolog.TraceLevel},
		{"TEST", false, false, false, zerolog.TraceLevel},
		{"prod", false, false, false, zerolog.InfoLevel},
		{"staging", false, false, false, zerolog.InfoLevel},
		{"prod", true, false, false, zerolog.DebugLevel},
		{"prod", false, true, false, zerolog.TraceLevel},
		{"dev", false, false, true, zerolog.InfoLevel},
		{"dev", true, true, true, zerolog.DebugLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Level(tc.environment, tc.debug, tc.trace, tc.info), "%+v", tc)
	}
}

func TestSetEnvironment(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	assert.Equal(t, zerolog.TraceLevel, SetEnvironment("dev"))
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())

	assert.Equal(t, zerolog.InfoLevel, SetEnvironment("prod"))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
