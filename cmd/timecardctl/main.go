// Command timecardctl runs timecard batch work outside the API server.
package main

import "os"

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}
