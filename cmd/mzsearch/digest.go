package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digest a FASTA file and report the size of the peptide database",
	Long: `Digest the proteins of a FASTA file in silico and print the number of
proteins, peptides and fragment ions of the resulting database.

Example:
  mzsearch digest --fasta yeast.fasta --static C=57.021464 --variable M=15.9949`,
	Args: cobra.NoArgs,
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	db, err := buildDatabase(cmd.Context(), par)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "proteins: %d\n", db.Proteins())
	fmt.Fprintf(out, "peptides: %d\n", db.Peptides())
	fmt.Fprintf(out, "fragments: %d\n", db.Fragments())
	return nil
}
