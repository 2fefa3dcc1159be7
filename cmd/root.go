package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MiuraToya/pythaw/internal/analytics"
	"github.com/MiuraToya/pythaw/output"
)

var (
	verboseFlag bool
	Version     = "0.1.0"
	GitCommit   = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "pythaw",
	Short: "Reachability analysis for heavy resource initialization in serverless handlers",
	Long: `pythaw walks a Python project's serverless handlers and flags client and
connection constructors (database drivers, cloud SDK clients, HTTP session
pools) that are reachable from a cold-start path, with the call chain that
makes them reachable.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics")
		verboseFlag, _ = cmd.Flags().GetBool("verbose")
		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
		analytics.SetVersion(Version)

		if cmd.Name() == "help" || len(os.Args) == 1 {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version)
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable anonymous usage reporting")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose progress output")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug-level tracing output")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable the startup banner")
}

func verbosityFromFlags(cmd *cobra.Command) output.VerbosityLevel {
	debug, _ := cmd.Flags().GetBool("debug")
	verbose, _ := cmd.Flags().GetBool("verbose")
	switch {
	case debug:
		return output.VerbosityDebug
	case verbose:
		return output.VerbosityVerbose
	default:
		return output.VerbosityDefault
	}
}

// exitWithConfigError reports a configuration error and terminates with
// exit code 2, per the contract that config errors are decided before
// the core ever runs and never flow through the normal RunE error path.
func exitWithConfigError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(int(output.ExitCodeConfigError))
}
