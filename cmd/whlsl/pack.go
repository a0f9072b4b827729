package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"whlsl/internal/loader"
)

var packCmd = &cobra.Command{
	Use:   "pack [flags] <file.yaml>",
	Short: "Convert a YAML program description to MessagePack",
	Args:  cobra.ExactArgs(1),
	RunE:  runPack,
}

func init() {
	packCmd.Flags().StringP("output", "o", "", "output file (default: input with a .msgpack extension)")
}

func runPack(cmd *cobra.Command, args []string) error {
	in := args[0]
	out, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if out == "" {
		out = packedName(in)
	}
	if out == in {
		return fmt.Errorf("refusing to overwrite %s", in)
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	packed, err := loader.ConvertYAML(data)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, packed, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(packed))
	return nil
}

func packedName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".msgpack"
}
