package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pmitra96/castleverde/extractor"
	"github.com/pmitra96/castleverde/services"
)

func newLabelCmd() *cobra.Command {
	var (
		ocrURL   string
		showText bool
	)
	cmd := &cobra.Command{
		Use:   "label <file>",
		Short: "Read a nutrition label from a PDF or image",
		Long:  "label parses text PDFs locally. Images are sent to the OCR service given by --ocr-url.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if showText {
				if !extractor.IsPDF(data) {
					return fmt.Errorf("--text needs a PDF, got %s", filepath.Base(args[0]))
				}
				text, err := extractor.PDFText(data)
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
				return nil
			}

			var ocr services.LabelOCR
			if ocrURL != "" {
				ocr = extractor.NewOCRClient(ocrURL)
			}
			result, err := services.NewLabelService(ocr).Process(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&ocrURL, "ocr-url", "", "OCR service base URL for image labels")
	cmd.Flags().BoolVar(&showText, "text", false, "Print the extracted PDF text rows instead of the parsed label")
	return cmd
}
