// Command bizctl is the operator CLI: migration files, one-off maintenance
// jobs and a few API calls through the Go client.
package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const (
	apiURLFlag   = "api-url"
	logLevelFlag = "log-level"
)

// rootFlags are shared by every leaf command; each registers them itself
var rootFlags = map[string]cobraflags.Flag{
	apiURLFlag: &cobraflags.StringFlag{
		Name:  apiURLFlag,
		Value: "http://localhost:8080/api/v1",
		Usage: "Base URL of the BizHub API",
	},
	logLevelFlag: &cobraflags.StringFlag{
		Name:  logLevelFlag,
		Value: "info",
		Usage: "Log level (debug, info, warn, error)",
	},
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bizctl",
		Short:         "Operate a BizHub deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrationsCommand(),
		newJobsCommand(),
		newRegisterCommand(),
		newUsageCommand(),
		newDashboardCommand(),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
