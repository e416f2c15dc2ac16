package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "Print the ailab version, with the commit and Go toolchain it was built from.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return err
		}
		if short {
			cmd.Println(version)
			return nil
		}

		cmd.Printf("ailab %s\n", version)
		if rev := buildRevision(); rev != "" {
			cmd.Printf("  commit: %s\n", rev)
		}
		cmd.Printf("  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

// buildRevision returns the VCS revision stamped by go build, shortened.
func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			return s.Value[:12]
		}
	}
	return ""
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
