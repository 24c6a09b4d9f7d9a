// Command skema converts JSON Schema documents and validates data against
// them.
//
//	skema jsonschema schema.yaml -o json
//	skema codegen schema.json --name User --package models > user_schema.go
//	skema validate schema.json data.yaml
//	skema validate crds.yaml cr.yaml --crd-kind Widget
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/skema"
	"github.com/reoring/skema/codegen"
	"github.com/reoring/skema/jsonschema"
)

// errInvalid marks a validate run whose data did not conform. The issues are
// already printed.
var errInvalid = errors.New("data does not conform to schema")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

type globalFlags struct {
	verbose bool
	crdKind string
}

func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// load imports the schema at path, unwrapping the CRD for --crd-kind when set.
func (g *globalFlags) load(path string, log *slog.Logger) (*jsonschema.Imported, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var im *jsonschema.Imported
	if g.crdKind != "" {
		im, err = jsonschema.ImportCRD(data, g.crdKind)
	} else {
		im, err = jsonschema.Import(data)
	}
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	for _, w := range im.Warnings {
		log.Warn("schema import", "file", path, "warning", w)
	}
	log.Debug("schema imported", "file", path, "kind", im.Node.Kind().String(), "defs", len(im.Defs))
	return im, nil
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "skema",
		Short:         "Convert JSON Schema documents and validate data against them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().StringVar(&g.crdKind, "crd-kind", "", "read the schema from the CustomResourceDefinition of this kind")

	root.AddCommand(newJSONSchemaCmd(g), newCodegenCmd(g), newValidateCmd(g))
	return root
}

func newJSONSchemaCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "jsonschema SCHEMA",
		Short: "Import a schema and print its normalized JSON Schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := g.load(args[0], g.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			doc := jsonschema.FromNode(im.Node, jsonschema.WithDefinitions(im.Defs))
			var out []byte
			switch format {
			case "json":
				out, err = doc.JSON()
			case "yaml":
				out, err = doc.YAML()
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func newCodegenCmd(g *globalFlags) *cobra.Command {
	var (
		name string
		pkg  string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "codegen SCHEMA",
		Short: "Generate Go source that builds the imported schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := g.load(args[0], g.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			src, err := codegen.GenerateFile(pkg, map[string]*skema.Node{name: im.Resolve()})
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}
			return os.WriteFile(out, src, 0o644)
		},
	}
	cmd.Flags().StringVar(&name, "name", "Schema", "name of the generated variable")
	cmd.Flags().StringVar(&pkg, "package", "main", "package of the generated file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	var (
		locale        string
		failFast      bool
		strictDupKeys bool
	)
	cmd := &cobra.Command{
		Use:   "validate SCHEMA DATA",
		Short: "Validate a JSON or YAML document against a schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := g.logger(cmd.ErrOrStderr())
			im, err := g.load(args[0], log)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			cfgOpts := []skema.Option{skema.WithLogger(log)}
			if locale != "" {
				cfgOpts = append(cfgOpts, skema.WithLocale(locale))
			}
			opt := skema.ParseOpt{Config: skema.NewConfig(cfgOpts...), FailFast: failFast}
			if strictDupKeys {
				opt.Strictness.OnDuplicateKey = skema.SeverityError
			}

			parse := skema.ParseJSON
			switch strings.ToLower(filepath.Ext(args[1])) {
			case ".yaml", ".yml":
				parse = skema.ParseYAML
			}
			if _, err := parse(cmd.Context(), im.Resolve(), data, opt); err != nil {
				iss, ok := skema.AsIssues(err)
				if !ok {
					return err
				}
				for _, it := range iss {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", pointer(it.Path), it.Message, it.Code)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s fails to validate\n", args[1])
				return errInvalid
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s validates\n", args[1])
			return err
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "message language (en, ja)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	cmd.Flags().BoolVar(&strictDupKeys, "strict-duplicate-keys", false, "reject documents with duplicate object keys")
	return cmd
}

func pointer(p skema.Path) string {
	if s := p.Pointer(); s != "" {
		return s
	}
	return "/"
}
