// Package os holds process-level helpers.
package os

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// ExpectTermination returns a channel that receives
// the first interrupt or termination signal.
func ExpectTermination() <-chan os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	return signals
}

// HomeDir returns the path of the named directory in the user home
// if such directory exists.
func HomeDir(name string) (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	dir := filepath.Join(home, name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}
