package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Batipro56920/batipro/internal/devis"
	"github.com/Batipro56920/batipro/internal/extract"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "devisctl",
		Short: "Devis parsing toolbox",
		Long: `devisctl runs the devis parsing engine against local files, without a
server or database. Its main use is tuning the heuristics against a
problematic PDF: parse with --diag to see every dropped line and why.`,
		Version: version,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(textCmd())
	rootCmd.AddCommand(rulesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	var rulesFile string
	var diag, asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Extract and parse a devis file (pdf, docx or txt)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := buildParser(rulesFile)
			if err != nil {
				return err
			}
			text, err := extractFile(args[0])
			if err != nil {
				return err
			}

			res, rejected, err := parser.Debug(text)
			if err != nil {
				return err
			}

			if asJSON {
				out := map[string]any{"result": res}
				if diag {
					out["rejected"] = rejected
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			printResult(res)
			if diag {
				printRejections(rejected)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules overrides file")
	cmd.Flags().BoolVar(&diag, "diag", false, "show dropped lines with reasons")
	cmd.Flags().BoolVar(&asJSON, "json", false, "machine-readable output")
	return cmd
}

func textCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <file>",
		Short: "Extract raw text from a devis file, without parsing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extractFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}

func rulesCmd() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective parsing rules as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := buildParser(rulesFile)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(parser.Rules())
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules overrides file")
	return cmd
}

func buildParser(rulesFile string) (*devis.Parser, error) {
	rules := devis.DefaultRules()
	if rulesFile != "" {
		loaded, err := devis.LoadRules(rulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	return devis.NewParser(rules), nil
}

func extractFile(path string) (string, error) {
	ex, err := extract.ForFile(filepath.Base(path), true)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ex.Extract(f, filepath.Base(path))
}

func printResult(res *devis.Result) {
	lotColor := color.New(color.FgCyan, color.Bold)
	sousLotColor := color.New(color.FgCyan)
	qtyColor := color.New(color.FgGreen)

	if len(res.Structure) > 0 {
		fmt.Println("Structure:")
		for _, sec := range res.Structure {
			if sec.Level == 1 {
				lotColor.Printf("  %s %s\n", sec.Code, sec.Title)
			} else {
				sousLotColor.Printf("    %s %s\n", sec.Code, sec.Title)
			}
		}
		fmt.Println()
	}

	fmt.Printf("Lines (%d):\n", len(res.Lines))
	for _, l := range res.Lines {
		code := l.Code
		if code == "" {
			code = "-"
		}
		fmt.Printf("  %-8s %-50s ", code, l.Designation)
		qtyColor.Printf("%g %s\n", l.Quantite, l.Unite)
	}
}

func printRejections(rejected []devis.Rejection) {
	if len(rejected) == 0 {
		return
	}
	dim := color.New(color.Faint)
	reason := color.New(color.FgYellow)

	fmt.Printf("\nDropped (%d):\n", len(rejected))
	for _, r := range rejected {
		line := r.Line
		if len([]rune(line)) > 60 {
			line = string([]rune(line)[:57]) + "..."
		}
		dim.Printf("  %-60s ", line)
		reason.Printf("[%s]\n", r.Reason)
	}
}
