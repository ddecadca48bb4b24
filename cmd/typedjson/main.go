// Package main provides the typedjson CLI for checking and converting JSON or
// YAML documents against Avro schemas.
//
// Usage:
//
//	typedjson decode --schema user.avsc user.json
//	typedjson encode --schema user.avsc --omit-defaults user.yaml
//	typedjson jsonschema --schema user.avsc
//
// Every flag can also be set through a TYPEDJSON_* environment variable
// (TYPEDJSON_WRAP_UNIONS=true) or a config file passed with --config.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/typedjson"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var ive *typedjson.IncompatibleValueError
	if errors.As(err, &ive) {
		for _, it := range ive.Issues {
			fmt.Fprintln(stderr, it.String())
		}
		return 1
	}
	if iss, ok := typedjson.AsIssues(err); ok {
		for _, it := range iss {
			fmt.Fprintln(stderr, it.String())
		}
		return 1
	}
	fmt.Fprintln(stderr, err)
	return 2
}

func newRootCmd() *cobra.Command {
	cfg := &Config{}
	rootCmd := &cobra.Command{
		Use:           "typedjson",
		Short:         "Check and convert JSON documents against Avro schemas",
		Long:          `typedjson decodes JSON or YAML documents under an Avro schema, reporting every incompatibility with its JSON Pointer path.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.load(cmd)
		},
	}

	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (yaml, json or toml)")
	f.StringP("schema", "s", "", "Avro schema file (.avsc)")
	f.Bool("wrap-unions", false, "Keep union values wrapped in memory")
	f.String("driver", "go-json", "JSON driver: go-json or encoding/json")
	f.String("lang", "en", "Message language: en or ja")
	f.BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newDecodeCmd(cfg), newEncodeCmd(cfg), newJSONSchemaCmd(cfg))
	return rootCmd
}
