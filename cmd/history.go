package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/anpconf/internal/history"
	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/presentation"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded builds",
	Long: `Builds exported by "anpconf build" and "anpconf run" are recorded when
history.enabled (or the "history" flag) is set. Ids may be shortened to any
unambiguous prefix.`,
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent builds",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		entries, err := db.Builds().List(contextOf(cmd), historyLimit)
		if err != nil {
			return err
		}
		f := presentation.NewFormatter(cmd.OutOrStdout(), plain)
		if historyJSON {
			return f.FormatBuilds(presentation.FromEntries(entries))
		}
		if len(entries) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No builds recorded")
			return err
		}
		return f.BuildTable(presentation.FromEntries(entries))
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a recorded build and its configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		e, err := db.Builds().Get(contextOf(cmd), args[0])
		if err != nil {
			return historyError(args[0], err)
		}
		if historyJSON {
			return presentation.NewFormatter(cmd.OutOrStdout(), plain).FormatBuild(presentation.FromEntry(e, true))
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "id:      %s\n", e.ID)
		_, _ = fmt.Fprintf(out, "created: %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(out, "job:     %s (%s)\n", e.Job, e.Kind)
		if e.TopAlg != "" {
			_, _ = fmt.Fprintf(out, "top alg: %s\n", e.TopAlg)
		}
		_, _ = fmt.Fprintf(out, "files:   %d\n\n", len(e.Files))
		_, err = fmt.Fprint(out, e.Config)
		return err
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a recorded build",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		ctx := contextOf(cmd)
		e, err := db.Builds().Get(ctx, args[0])
		if err != nil {
			return historyError(args[0], err)
		}
		if err := db.Builds().Delete(ctx, e.ID); err != nil {
			return err
		}
		log.Info(log.CatHistory, "Deleted build", "id", e.ID)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", e.ID)
		return err
	},
}

func historyError(id string, err error) error {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return fmt.Errorf("no build matches %q", id)
	case errors.Is(err, history.ErrAmbiguousID):
		return fmt.Errorf("%q matches more than one build, use a longer prefix", id)
	}
	return err
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of builds (0 for all)")
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output JSON")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "output JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
