package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/typedjson"
	"github.com/reoring/typedjson/jsonschema"
)

func newDecodeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Validate a JSON or YAML document against the schema",
		Long: `Decode reads a JSON or YAML document (stdin when FILE is omitted or "-"),
checks it against the schema and prints its canonical JSON encoding.

Example:
  typedjson decode --schema user.avsc user.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transcodeFile(cmd, cfg, args, false)
		},
	}
	cmd.Flags().Bool("allow-undeclared", false, "Ignore object fields the schema does not declare")
	addParseFlags(cmd)
	return cmd
}

func newEncodeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [FILE]",
		Short: "Decode a document and re-encode it, optionally dropping default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transcodeFile(cmd, cfg, args, true)
		},
	}
	cmd.Flags().Bool("allow-undeclared", false, "Ignore object fields the schema does not declare")
	cmd.Flags().Bool("omit-defaults", false, "Drop record fields equal to their default")
	addParseFlags(cmd)
	return cmd
}

func addParseFlags(cmd *cobra.Command) {
	cmd.Flags().String("duplicates", "ignore", "Duplicate JSON keys: ignore, warn or error")
	cmd.Flags().Int("max-depth", 0, "Maximum nesting depth (0 = unlimited)")
	cmd.Flags().Int64("max-bytes", 0, "Maximum input size in bytes (0 = unlimited)")
}

func newJSONSchemaCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the JSON Schema of the schema's JSON encoding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := cfg.loadSchema()
			if err != nil {
				return err
			}
			s, err := jsonschema.FromType(t)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), s)
		},
	}
}

// transcodeFile decodes the input under the schema and prints the JSON
// encoding of the decoded value. Decoding alone already normalizes the
// document; encode additionally honors --omit-defaults.
func transcodeFile(cmd *cobra.Command, cfg *Config, args []string, encode bool) error {
	t, err := cfg.loadSchema()
	if err != nil {
		return err
	}
	opt, err := cfg.options()
	if err != nil {
		return err
	}
	opt.Parse.OnWarning = func(it typedjson.Issue) {
		cfg.log.Warn("input warning", zap.String("path", it.Path), zap.String("code", it.Code), zap.String("message", it.Message))
	}

	name := "-"
	if len(args) == 1 {
		name = args[0]
	}
	data, err := readInput(cmd.InOrStdin(), name)
	if err != nil {
		return err
	}

	start := time.Now()
	decodeOpt := opt
	decodeOpt.OmitDefaultValues = false
	var v any
	if isYAML(name) {
		v, err = typedjson.DecodeYAMLBytes(data, t, decodeOpt)
	} else {
		v, err = typedjson.DecodeJSONBytes(data, t, decodeOpt)
	}
	if err != nil {
		cfg.log.Debug("decode failed", zap.String("input", name), zap.Error(err))
		return err
	}
	encodeOpt := typedjson.Options{AllowUndeclaredFields: opt.AllowUndeclaredFields}
	if encode {
		encodeOpt.OmitDefaultValues = opt.OmitDefaultValues
	}
	out, err := typedjson.EncodeToJSON(v, t, encodeOpt)
	if err != nil {
		return err
	}
	cfg.log.Debug("document converted", zap.String("input", name), zap.Duration("elapsed", time.Since(start)))
	return writeJSON(cmd.OutOrStdout(), out)
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func writeJSON(w io.Writer, v any) error {
	raw, err := gojson.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	// Indent re-formats without reordering, so record field order survives.
	if err := gojson.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
