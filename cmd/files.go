package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/anpconf/internal/files"
	"github.com/zjrosen/anpconf/internal/log"
)

var (
	filesFileKeys []string
	filesDirKey   string
	filesSave     string
	filesSearch   bool
	filesKeys     []string
	filesDeep     bool
	filesRecurse  string
)

var filesCmd = &cobra.Command{
	Use:   "files PATH...",
	Short: "Find input files",
	Long: `Find input files the way job files do.

By default each PATH (or comma-separated list of paths) is walked and files
are kept when they match --file-key. --file-key may be repeated; each value
is a comma-separated list of regular expressions that must all match, and a
file is kept when any value matches. Directories are descended when their
path matches --dir-key.

With --search each PATH is a storage target (castor, eos, srm or a local
directory) listed one level deep; .root files whose path contains one of
--key are kept. --recursive KEY walks each PATH and keeps files whose name
contains KEY.

Examples:
  anpconf files /data/run1,/data/run2 --file-key '\.root$' --dir-key 'period[AB]'
  anpconf files root://eosatlas//eos/atlas/user/data --search --key muons --deep
  anpconf files /data --recursive mc12 --save input.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFiles,
}

func init() {
	filesCmd.Flags().StringArrayVar(&filesFileKeys, "file-key", nil, "file regexps, comma-separated for AND (repeatable, OR)")
	filesCmd.Flags().StringVar(&filesDirKey, "dir-key", "", "directory regexp")
	filesCmd.Flags().StringVar(&filesSave, "save", "", "write the file list to this path")
	filesCmd.Flags().BoolVar(&filesSearch, "search", false, "list storage targets instead of walking local paths")
	filesCmd.Flags().StringSliceVar(&filesKeys, "key", nil, "substrings for --search")
	filesCmd.Flags().BoolVar(&filesDeep, "deep", false, "with --search, descend one directory level")
	filesCmd.Flags().StringVar(&filesRecurse, "recursive", "", "walk PATHs for file names containing this key")
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	var found []string
	switch {
	case filesSearch:
		option := ""
		if filesDeep {
			option = files.OptionDeep
		}
		s := newSearcher()
		for _, target := range args {
			found = append(found, s.SearchInputDir(contextOf(cmd), target, filesKeys, option)...)
		}
	case filesRecurse != "":
		for _, target := range args {
			found = append(found, files.SearchRecursive(target, filesRecurse)...)
		}
	default:
		fileKeys := filesFileKeys
		if len(fileKeys) == 0 && cfg.Files.FileKey != "" {
			fileKeys = []string{cfg.Files.FileKey}
		}
		dirKey := filesDirKey
		if dirKey == "" {
			dirKey = cfg.Files.DirKey
		}
		var err error
		found, err = files.FindLocal(args, files.Filter{File: fileKeys, Dir: dirKey})
		if err != nil {
			return err
		}
	}

	if filesSave != "" {
		if err := files.SaveList(filesSave, found); err != nil {
			return err
		}
		log.Info(log.CatFiles, "Saved file list", "path", filesSave, "count", len(found))
		return nil
	}
	if len(found) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(found, "\n"))
	return err
}
