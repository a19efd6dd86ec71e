package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "record <sale.json|sale.yaml|->",
		Short: "Queue a sale in the offline buffer",
		Long: `Queue a sale in the offline buffer.

The sale is read from a JSON or YAML file, or from stdin when the argument
is "-". It is stamped with an offline id and a creation time and kept until
a sync pass delivers it.

Example:
  posclient record sale.yaml
  echo '{"items":[{"name":"Milk","price":1.5,"quantity":2,"barcode":"779"}],"total":3}' | posclient record -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return recordSale(rootOpts, args[0], cmd)
		},
	}
}

func recordSale(opts *RootOptions, source string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	raw, err := readSource(source, cmd.InOrStdin())
	if err != nil {
		_ = out.Error(err.Error())
		return WrapExitError(ExitCommandError, "read sale", err)
	}
	sale, err := decodeSale(source, raw)
	if err != nil {
		_ = out.Error(err.Error())
		return WrapExitError(ExitCommandError, "decode sale", err)
	}

	buf, closeFn, err := opts.openBuffer()
	if err != nil {
		_ = out.Error(err.Error())
		return err
	}
	defer closeFn()

	pending, err := buf.Save(cmd.Context(), sale)
	if err != nil {
		_ = out.Error(err.Error())
		return WrapExitError(ExitFailure, "sale not saved", err)
	}

	return out.Success(map[string]any{
		"offlineId": pending.OfflineID,
		"createdAt": pending.CreatedAt,
	}, fmt.Sprintf("queued %s", pending.OfflineID))
}

func readSource(source string, stdin io.Reader) ([]byte, error) {
	if source == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(source)
}

// decodeSale parses YAML for .yaml/.yml files and JSON otherwise. Stdin is
// sniffed: anything that does not start with '{' is treated as YAML.
func decodeSale(source string, raw []byte) (map[string]any, error) {
	var sale map[string]any
	if isYAML(source, raw) {
		if err := yaml.Unmarshal(raw, &sale); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	} else if err := json.Unmarshal(raw, &sale); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("sale must be an object")
	}
	return sale, nil
}

func isYAML(source string, raw []byte) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}
	return source == "-" && !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{"))
}
