package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/anpconf/internal/cut"
	"github.com/zjrosen/anpconf/internal/job"
	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/presentation"
)

var (
	cutsLatex    string
	cutsMarkdown bool
	cutsWidth    int
)

var cutsCmd = &cobra.Command{
	Use:   "cuts JOB",
	Short: "List the cuts a job defines",
	Long: `List every cut list of a job file, grouped by algorithm and key.

--latex writes all cuts as a LaTeX table; --markdown renders a table per
cut list in the terminal.

Examples:
  anpconf cuts muons.yaml
  anpconf cuts muons.yaml --markdown
  anpconf cuts muons.yaml --latex tables/cuts.tex`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := buildJob(contextOf(cmd), args[0], nil)
		if err != nil {
			return err
		}

		if cutsLatex != "" {
			if err := cut.WriteLatex(cutsLatex, res.AllCuts()); err != nil {
				return err
			}
			log.Info(log.CatCut, "Wrote LaTeX cut table", "path", cutsLatex, "cuts", len(res.AllCuts()))
			return nil
		}
		if cutsMarkdown {
			return renderCutsMarkdown(cmd.OutOrStdout(), res.Cuts)
		}
		return writeCuts(cmd.OutOrStdout(), res.Cuts)
	},
}

func init() {
	cutsCmd.Flags().StringVar(&cutsLatex, "latex", "", "write a LaTeX table to this file")
	cutsCmd.Flags().BoolVar(&cutsMarkdown, "markdown", false, "render markdown tables")
	cutsCmd.Flags().IntVar(&cutsWidth, "width", 100, "markdown wrap width")
	rootCmd.AddCommand(cutsCmd)
}

func writeCuts(w io.Writer, lists []job.CutList) error {
	for _, l := range lists {
		if _, err := fmt.Fprintf(w, "%s/%s\n", l.Alg, l.Key); err != nil {
			return err
		}
		for _, c := range l.Items {
			if _, err := fmt.Fprintf(w, "  %s\n", c); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderCutsMarkdown(w io.Writer, lists []job.CutList) error {
	style := "dark"
	if plain {
		style = "notty"
	}
	md, err := presentation.NewMarkdown(cutsWidth, style)
	if err != nil {
		return err
	}
	for _, l := range lists {
		out, err := md.RenderCuts(l.Alg+" / "+l.Key, l.Items)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}
