package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/KreesoAuriga/ImageLoader/internal/decoder"
	"github.com/KreesoAuriga/ImageLoader/internal/imageloader"
)

var (
	statsWorkers   int
	statsMemoryMiB int64
)

var statsCmd = &cobra.Command{
	Use:   "stats <dir>",
	Short: "Load a directory once and report cache utilization",
	Long: `Runs the same load pipeline as "load" against <dir>, then prints a
box-drawn summary of cache utilization and decoder configuration — modeled
on the teacher's cmd/build.go report, adapted from a manifest's persisted
stats (this cache keeps no persisted state; §6) to the live
EntryCount/CurrentUsage/GetMaxMemory accessors a single run produces.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsWorkers, "workers", "w", 0, "max concurrent decode/resize tasks (0 = NumCPU)")
	statsCmd.Flags().Int64VarP(&statsMemoryMiB, "memory-mib", "m", 256, "cache memory budget in MiB")
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	run, err := loadTree(args[0], 0, 0, statsWorkers, statsMemoryMiB, 1)
	if err != nil {
		return err
	}
	defer func() {
		for _, h := range run.handles {
			h.Release()
		}
	}()

	var succeeded, failed, oom int
	for _, r := range run.results {
		switch r.status {
		case imageloader.StatusSuccess:
			succeeded++
		case imageloader.StatusOutOfMemory:
			oom++
		default:
			failed++
		}
	}

	fmt.Println()
	fmt.Println("  ╔══════════════════════════════════════════════╗")
	fmt.Println("  ║            imgcache stats                    ║")
	fmt.Println("  ╚══════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  supported extensions: %v\n", decoder.SupportedExtensions())
	fmt.Printf("  default workers:      %d (NumCPU)\n", runtime.NumCPU())
	fmt.Printf("  elapsed:              %s\n", run.elapsed.Round(time.Millisecond))
	fmt.Println()
	fmt.Printf("  tasks:      %d (ok %d, oom %d, failed %d)\n", len(run.results), succeeded, oom, failed)
	fmt.Printf("  entries:    %d\n", run.cache.EntryCount())
	fmt.Printf("  usage:      %s / %s\n", formatBytes(run.cache.CurrentUsage()), formatBytes(run.cache.GetMaxMemory()))
	fmt.Println()

	for _, r := range run.results {
		if r.status != imageloader.StatusSuccess {
			continue
		}
		if bytes, ok := run.cache.EntryUsage(r.path); ok {
			logVerbose("entry %-40s %8s live", r.path, formatBytes(bytes))
		}
	}

	return nil
}
