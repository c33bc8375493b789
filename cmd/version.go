package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pustakabot/pustaka/internal/i18n"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: i18n.T("version.description"),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(i18n.Sprintf("app.version", AppVersion))
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
