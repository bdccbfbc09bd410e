package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/anpconf/internal/presentation"
)

var (
	printWidth int
	printAlgs  bool
)

var printCmd = &cobra.Command{
	Use:   "print JOB",
	Short: "Show the exported registry of a job as a tree",
	Long: `Build a job file and draw the exported registry as a tree. Nested
registries open a branch; long values wrap at --width.

Examples:
  anpconf print muons.yaml
  anpconf print muons.yaml --width 0 --plain
  anpconf print muons.yaml --algs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := buildJob(contextOf(cmd), args[0], nil)
		if err != nil {
			return err
		}
		w := res.Wrapper()
		if printAlgs {
			w.Print()
		}
		reg, err := w.RegistryConfig()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), presentation.RenderTree(w.Name(), reg, presentation.TreeOptions{
			Width: printWidth,
			Plain: plain,
		}))
		return err
	},
}

func init() {
	printCmd.Flags().IntVar(&printWidth, "width", 100, "wrap values at this width, 0 disables wrapping")
	printCmd.Flags().BoolVar(&printAlgs, "algs", false, "also log the algorithm tree")
	rootCmd.AddCommand(printCmd)
}
