package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/VictorTadashi/AnimaFlow/internal/catalog"
	"github.com/VictorTadashi/AnimaFlow/internal/export"
	"github.com/VictorTadashi/AnimaFlow/internal/repositories"
	"github.com/VictorTadashi/AnimaFlow/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConvertCommand(log func() *zap.Logger) *cobra.Command {
	var format, layout, imagesDir, out string

	cmd := &cobra.Command{
		Use:   "convert <file.html>",
		Short: "Convert a lesson document to pdf, pptx or html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			l, err := export.ParseLayout(layout)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			// Backgrounds are looked up by the default filenames directly inside imagesDir
			var images export.ImageSource
			if imagesDir != "" {
				repo := repositories.NewStaticImageRepository(catalog.Default().BackgroundImages)
				images = export.NewImageLoader(repo, storage.NewLocalStorage(imagesDir), "", log())
			}

			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if args[0] == "-" {
				name = ""
			}
			file, err := export.NewExporter(images, nil, log()).Export(cmd.Context(), f, string(data), export.Options{
				Filename: name,
				Layout:   l,
			})
			if err != nil {
				return err
			}

			target := out
			if target == "" {
				target = file.Filename
			}
			if err := os.WriteFile(target, file.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", target, len(file.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatPDF), "Output format: pdf, pptx or html")
	cmd.Flags().StringVar(&layout, "layout", "", "Slide layout for pptx: 16x9 (default) or a4")
	cmd.Flags().StringVar(&imagesDir, "images", "", "Directory holding the slide background images")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path; defaults to the document name with the format extension")

	return cmd
}
