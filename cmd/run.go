package cmd

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/run"
)

var runCmd = &cobra.Command{
	Use:   "run JOB",
	Short: "Build a job and run it through the engine",
	Long: `Build the run wrapper described by a job file and drive the engine
configured under runner: through Config, Init, Exec and Done. The
configuration is written as XML into a work directory and passed to
runner.binary as its last argument.

Examples:
  anpconf run muons.yaml
  ANPCONF_RUNNER_KEEP_CONFIG=true anpconf run muons.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := contextOf(cmd)
		runner := newRunner()
		res, err := buildJob(ctx, args[0], runner)
		if err != nil {
			return err
		}

		reg, err := res.Wrapper().RegistryConfig()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := reg.WriteXML(&buf); err != nil {
			return err
		}

		if err := res.Run(ctx); err != nil {
			return err
		}
		log.Info(log.CatRun, "Run finished", "job", args[0], "files", len(res.Wrapper().StoredFiles()))
		recordBuild(ctx, args[0], res, "xml", buf.Bytes())
		return nil
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute CONFIG",
	Short: "Run the engine on an existing XML configuration",
	Long: `Run runner.binary on a configuration file written earlier, for example
by "anpconf build -o config.xml".

Examples:
  anpconf execute config.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newModule(newRunner())
		return m.Execute(contextOf(cmd), args[0])
	},
}

func newModule(runner run.Runner) *run.Module {
	return run.NewModule(runner, run.WithTracer(tracer()), run.WithSearcher(newSearcher()))
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(executeCmd)
}
