// Command imgcache drives the image loader/cache pair against real files on
// disk: `imgcache load <dir>` decodes and caches every supported image it
// finds, reporting per-file outcomes and the cache's final memory usage.
package main

import (
	"fmt"
	"os"

	"github.com/KreesoAuriga/ImageLoader/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
