package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/524D/mzsearch"
	"github.com/524D/mzsearch/internal/mzml"
)

// Parameters of the annotate command
type annotateParams struct {
	mzMLFilename string
	title        string
	sequence     string
	ppm          float64
	charge       int
}

var apar annotateParams

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate the peaks of a spectrum with the fragment ions of a peptide",
	Long: `Print the peaks of one spectrum that are explained by b and y ions of the
given peptide. The sequence is a plain peptide sequence, to which the static
modifications are applied, or a ProForma string like PEM[15.9949]TIDEK.

Example:
  mzsearch annotate --fasta yeast.fasta --mzml yeast.mzML --title scan=1234 --sequence LVNEVTEFAK`,
	Args: cobra.NoArgs,
	RunE: runAnnotate,
}

func init() {
	f := annotateCmd.Flags()
	f.StringVar(&apar.mzMLFilename, "mzml", "", "mzML `filename` (may be gzip compressed)")
	f.StringVar(&apar.title, "title", "", "id of the spectrum")
	f.StringVar(&apar.sequence, "sequence", "", "peptide sequence or ProForma string")
	f.Float64Var(&apar.ppm, "ppm", mzsearch.DefaultAnnotateTolerancePPM, "fragment mass tolerance (ppm)")
	f.IntVar(&apar.charge, "charge", mzsearch.DefaultAnnotateCharge, "highest fragment charge")
	annotateCmd.MarkFlagRequired("mzml")
	annotateCmd.MarkFlagRequired("title")
	annotateCmd.MarkFlagRequired("sequence")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	db, err := buildDatabase(cmd.Context(), par)
	if err != nil {
		return err
	}
	f, err := mzml.Open(apar.mzMLFilename, mzml.Processor{})
	if err != nil {
		return fmt.Errorf("read mzML file %s: %w", apar.mzMLFilename, err)
	}
	s, err := f.Spectrum(apar.title)
	if err != nil {
		return err
	}
	opts := mzsearch.DefaultAnnotateOptions()
	opts.TolerancePPM = apar.ppm
	opts.Charge = apar.charge
	peaks, err := db.AnnotateSequence(s, apar.sequence, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range peaks {
		fmt.Fprintf(out, "%f\t%f\t%s%d\t%d+\n", p.Mass, p.Intensity, p.Ion, p.Index, p.Charge)
	}
	return nil
}
