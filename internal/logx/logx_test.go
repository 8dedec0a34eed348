package logx_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/gamous/SDA/internal/logx"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	l := logx.New()
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNewHonorsEnvOverride(t *testing.T) {
	t.Setenv("DECORE_LOG_LEVEL", "debug")
	l := logx.New()
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestForFunctionSetsFuncField(t *testing.T) {
	entry := logx.ForFunction(logx.Discard(), 0x401000)
	assert.Equal(t, uint64(0x401000), entry.Data["func"])
}
