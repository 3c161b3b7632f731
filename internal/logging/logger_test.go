//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLogging(t *testing.T) {
	logger := newLogger("testmodule")
	var buffer bytes.Buffer
	logger.SetOut(&buffer)
	logger.SetLevel(zapcore.InfoLevel)

	// As default, the logging level must be at info
	assert.True(t, logger.IsLevelEnabled(zapcore.InfoLevel))
	// Debug should be off
	assert.False(t, logger.IsLevelEnabled(zapcore.DebugLevel))
	assert.False(t, logger.IsDebugEnabled())

	actorID := "tester"
	actionID := "123abc"

	// Debug log should not be printed
	logger.Debug(actorID, actionID, "debug message")
	logger.Debugf(actorID, actionID, "debug message %s", "hello")
	assert.Empty(t, buffer.Bytes())

	// The other levels should be printed
	buffer.Reset()
	logger.Info(actorID, actionID, "info message")
	assert.NotEmpty(t, buffer.Bytes())
	buffer.Reset()
	logger.Infof(actorID, actionID, "info message %s", "hello")
	assert.NotEmpty(t, buffer.Bytes())
	buffer.Reset()
	logger.Warn(actorID, actionID, "warning message")
	assert.NotEmpty(t, buffer.Bytes())
	buffer.Reset()
	logger.Warnf(actorID, actionID, "warning message %s", "hello")
	assert.NotEmpty(t, buffer.Bytes())
	buffer.Reset()
	logger.Error(actorID, actionID, "error message")
	assert.NotEmpty(t, buffer.Bytes())
	buffer.Reset()
	logger.Errorf(actorID, actionID, "error message %s", "hello")
	assert.NotEmpty(t, buffer.Bytes())
}

func TestSysLogging(t *testing.T) {
	logger := newLogger("testsysmodule")
	var buffer bytes.Buffer
	logger.SetOut(&buffer)

	logger.SetLevel(zapcore.ErrorLevel)
	assert.True(t, logger.IsLevelEnabled(zapcore.ErrorLevel))

	// debug, info, and warning levels should be off
	assert.False(t, logger.IsLevelEnabled(zapcore.DebugLevel))
	assert.False(t, logger.IsLevelEnabled(zapcore.InfoLevel))
	assert.False(t, logger.IsLevelEnabled(zapcore.WarnLevel))

	logger.SysDebugf("suppressed %s", "debug")
	logger.SysInfof("suppressed %s", "info")
	logger.SysWarnf("suppressed %s", "warn")
	assert.Empty(t, buffer.Bytes())

	logger.SysErrorf("reported %s", "error")
	assert.NotEmpty(t, buffer.Bytes())
	assert.Contains(t, buffer.String(), "reported error")
}

func TestDebugGuard(t *testing.T) {
	logger := newLogger("guardmodule")
	var buffer bytes.Buffer
	logger.SetOut(&buffer)

	logger.SetLevel(zapcore.DebugLevel)
	assert.True(t, logger.IsDebugEnabled())

	logger.SysDebug("debug visible")
	assert.NotEmpty(t, buffer.Bytes())
}
