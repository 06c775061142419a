package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unixpickle/wordsense/purandare"
)

var inspectTop int

var inspectCmd = &cobra.Command{
	Use:   "inspect <space file> [words...]",
	Short: "Show the senses of words in a saved space",
	Long: `Show the senses of words in a saved space, along with the heaviest
features of each sense. Without words, a summary of the space is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVarP(&inspectTop, "top", "n", 10, "features to show per sense")
}

func runInspect(cmd *cobra.Command, args []string) error {
	space, err := purandare.LoadSpace(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	words := args[1:]
	if len(words) == 0 {
		var multi int
		for _, term := range space.Vocabulary {
			if len(space.Senses(term)) > 1 {
				multi++
			}
		}
		fmt.Fprintf(out, "space:      %s\n", space.Name())
		fmt.Fprintf(out, "dimensions: %d\n", space.Dim())
		fmt.Fprintf(out, "senses:     %d\n", len(space.Labels))
		fmt.Fprintf(out, "ambiguous:  %d words\n", multi)
		return nil
	}

	for _, word := range words {
		senses := space.Senses(word)
		if len(senses) == 0 {
			fmt.Fprintf(out, "%s: not in space\n", word)
			continue
		}
		for _, label := range senses {
			var parts []string
			for _, f := range space.TopFeatures(label, inspectTop) {
				parts = append(parts, fmt.Sprintf("%s:%.2f", f.Term, f.Weight))
			}
			fmt.Fprintf(out, "%s\t%s\n", label, strings.Join(parts, " "))
		}
	}
	return nil
}
