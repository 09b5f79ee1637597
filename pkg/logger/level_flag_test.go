/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestStringToLevelNamedLevels(t *testing.T) {
	t.Parallel()

	level, err := StringToLevel("debug", zapcore.ErrorLevel)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	level, err = StringToLevel("Info", zapcore.ErrorLevel)
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)

	level, err = StringToLevel("ERROR", zapcore.DebugLevel)
	require.NoError(t, err)
	assert.Equal(t, zapcore.ErrorLevel, level)
}

func TestStringToLevelNumericVerbosity(t *testing.T) {
	t.Parallel()

	level, err := StringToLevel("4", zapcore.ErrorLevel)
	require.NoError(t, err)
	assert.Equal(t, zapcore.Level(-4), level)
}

func TestStringToLevelInvalid(t *testing.T) {
	t.Parallel()

	_, err := StringToLevel("chatty", zapcore.ErrorLevel)
	assert.Error(t, err)

	_, err = StringToLevel("-2", zapcore.ErrorLevel)
	assert.Error(t, err)
}
