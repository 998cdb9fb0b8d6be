package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is stamped by -ldflags on release builds. Module-aware
// installs (go install lectio@vX.Y.Z) get no ldflags, so resolvedVersion
// falls back to the build info the toolchain embeds.
var version = "(devel)"

func resolvedVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lectio %s (%s/%s)\n", resolvedVersion(), runtime.GOOS, runtime.GOARCH)
	},
}
