// Package cli is the imgcache command-line surface: a thin cobra front end
// over imageloader/imagecache for exercising the load → cache → evict
// lifecycle against real files on disk. Modeled on the teacher's
// cli/cmd/root.go (same version/verbose flag plumbing, same logVerbose
// helper tagged with the tool name instead of "[tgimg]").
package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "imgcache",
	Short: "Bounded-memory image loading and caching demo",
	Long: `imgcache exercises the imageloader/imagecache pair against real files:
it decodes images at most once, caches their source pixels, produces
resized variants on demand, and evicts them the instant the last strong
handle is dropped.`,
	Version: version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgcache %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[imgcache] "+format+"\n", args...)
	}
}
