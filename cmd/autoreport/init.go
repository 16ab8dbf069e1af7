package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/autoreport/internal/config"
	"github.com/nao1215/autoreport/internal/render"
)

//go:embed templates/autoreport.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new autoreport configuration file",
		Long: `Initialize creates a new .autoreport configuration file in the current directory.

The generated file documents every setting with its default value.
With --templates, the built-in HTML templates are also written to a
directory so they can be customized; point templateDir at it to use them.

Examples:
  # Create .autoreport in current directory
  autoreport init

  # Create config file at a specific path
  autoreport init -o eval.yaml

  # Also export the HTML templates for customization
  autoreport init --templates templates

  # Force overwrite existing files
  autoreport init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")
	cmd.Flags().StringP("templates", "t", "",
		"Also write the built-in HTML templates to this directory")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	templateDir, err := cmd.Flags().GetString("templates")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/autoreport.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)

	if templateDir != "" {
		written, err := render.ExportTemplates(templateDir, force)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(out, "Created template: %s\n", path)
		}
		fmt.Fprintf(out, "\nSet templateDir: %s in %s to use the exported templates.\n", templateDir, outputPath)
		return nil
	}

	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Report title and output path")
	fmt.Fprintln(out, "  - Model name suffix")
	fmt.Fprintln(out, "  - Run history")

	return nil
}
