/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Metacraft Labs Ltd. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package daemon

import (
	"os"
	"path/filepath"
	"runtime"
)

// SocketEnvVar overrides the well-known daemon socket path when set.
const SocketEnvVar = "CODETRACER_DAEMON_SOCKET"

// DefaultSocketPath returns the platform-specific well-known path of the
// backend-manager daemon socket. On macOS the socket lives under the user's
// cache directory; on Linux and other POSIX systems it is under /tmp.
func DefaultSocketPath() string {
	if path, found := os.LookupEnv(SocketEnvVar); found && path != "" {
		return path
	}

	if runtime.GOOS == "darwin" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			home = "/"
		}
		return filepath.Join(home, "Library", "Caches", "com.codetracer.CodeTracer", "daemon.sock")
	}

	return filepath.Join("/tmp", "codetracer", "daemon.sock")
}
