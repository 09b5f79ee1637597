/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"
)

// TestTimeoutEnvVar overrides per-test context timeouts with a value in
// minutes, useful when stepping through tests in a debugger.
const TestTimeoutEnvVar = "CODETRACER_TEST_TIMEOUT"

// GetTestContext returns a context bounded by the shorter of testTimeout
// and the test binary's own deadline. A zero testTimeout means no timeout
// beyond the test deadline.
func GetTestContext(t *testing.T, testTimeout time.Duration) (context.Context, context.CancelFunc) {
	if timeoutStr, found := os.LookupEnv(TestTimeoutEnvVar); found {
		timeout, parseErr := strconv.ParseUint(timeoutStr, 10, 16)
		if parseErr != nil {
			panic(fmt.Sprintf("test timeout value '%s' is invalid: %s", timeoutStr, parseErr.Error()))
		}
		return context.WithTimeout(context.Background(), time.Duration(timeout)*time.Minute)
	}

	deadline, haveDeadline := t.Deadline()

	switch {
	case !haveDeadline && testTimeout == 0:
		return context.WithCancel(context.Background())

	case haveDeadline && testTimeout == 0:
		return context.WithDeadline(context.Background(), deadline)

	case !haveDeadline:
		return context.WithTimeout(context.Background(), testTimeout)

	default:
		// Take the shorter of the two deadlines.
		testDeadline := time.Now().Add(testTimeout)
		if testDeadline.Before(deadline) {
			return context.WithDeadline(context.Background(), testDeadline)
		}
		return context.WithDeadline(context.Background(), deadline)
	}
}
