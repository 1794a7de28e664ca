// Copyright © 2026 Releasekit

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// confirmStdin is patched over in tests to script the prompt.
var confirmStdin io.Reader = os.Stdin

// confirmAction asks the operator to type the literal action name before a
// destructive step. Anything else declines.
func confirmAction(action, target string) bool {
	fmt.Fprintf(os.Stderr, "about to %s %s\ntype %q to proceed: ", action, target, action)
	line, err := bufio.NewReader(confirmStdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == action
}
