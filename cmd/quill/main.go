// Command quill lays out HTML documents with the quill layout core and
// prints the box tree, exports geometry as YAML or paints a PNG.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	a := newApp()
	if err := newRootCmd(a).Execute(); err != nil {
		if a.log != nil {
			a.log.Error("command failed", zap.Error(err))
			_ = a.log.Sync()
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
