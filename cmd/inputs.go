package cmd

import (
	"github.com/spf13/cobra"

	"prdpilot/pkg/inputs"
	"prdpilot/pkg/ui"
)

var inputsCmd = &cobra.Command{
	Use:   "inputs [dir]",
	Short: "List candidate source documents in a directory",
	Long: `Walks a directory (default: the working directory) and lists the
markdown and text files that would serve as pipeline inputs. Paths
matched by .gitignore or .prdpilot/.ignore are excluded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		docs, err := inputs.Discover(root)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			ui.Print("No source documents found under %s\n", root)
			return nil
		}

		for _, doc := range docs {
			ui.Print("%s (%d bytes)\n", doc.Path, doc.Size)
		}
		ui.Print("\n%d document(s)\n", len(docs))
		return nil
	},
}
