package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloud-lever/roap/util"
)

// validateCmd represents the validate document command
var validateCmd = &cobra.Command{
	Use:   "validate PATH",
	Short: "Validate a problem document",
	Long: `Validate the problem document given in PATH:
	all cross references must resolve and every problem must be consistent.`,
	Args: cobra.ExactArgs(1),
	Run:  validate,
}

func init() {
	validateCmd.Flags().Bool("verbose", false, "List the problems found in the document")
}

func validate(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	ids, err := util.ValidateProblemsFile(args[0])
	if err != nil {
		log.Error("Document %s is not valid. Details: %s", args[0], err.Error())
		os.Exit(1)
	}
	if verbose {
		for _, id := range ids {
			fmt.Println(id)
		}
	}
	fmt.Println("Document is valid")
}
