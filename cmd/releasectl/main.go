// Copyright © 2026 Releasekit

package main

import "github.com/releasekit/releasectl/cmd/releasectl/cmd"

func main() {
	cmd.Execute()
}
