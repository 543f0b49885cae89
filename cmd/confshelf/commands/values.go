package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"confshelf/internal/crypto"
	"confshelf/internal/domain"
)

// valueFlags selects how a command line argument becomes a value.
type valueFlags struct {
	text   bool // take the argument verbatim
	base64 bool // decode the argument into bytes
}

// parse turns arg into a value. By default arg is read as YAML, so
// 42, true, [a, b] and {k: v} keep their types.
func (f valueFlags) parse(arg string) (domain.Value, error) {
	switch {
	case f.text && f.base64:
		return domain.Value{}, fmt.Errorf("--text and --base64 are mutually exclusive")
	case f.text:
		return domain.Text(arg), nil
	case f.base64:
		b, err := crypto.FromB64(arg)
		if err != nil {
			return domain.Value{}, fmt.Errorf("decoding base64: %w", err)
		}
		return domain.Bytes(b), nil
	}

	var x any
	if err := yaml.Unmarshal([]byte(arg), &x); err != nil {
		return domain.Value{}, fmt.Errorf("parsing value: %w", err)
	}
	return domain.FromAny(x)
}

// plain converts v for JSON or YAML output. Bytes are shown as base64.
func plain(v domain.Value) any {
	switch v.Kind() {
	case domain.KindBytes:
		b, _ := v.AsBytes()
		return crypto.B64(b)
	case domain.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = plain(item)
		}
		return out
	case domain.KindMap:
		m, _ := v.AsMap()
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = plain(item)
		}
		return out
	}
	return v.Any()
}

func render(w io.Writer, format string, x any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(x)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(x); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (json or yaml)", format)
}
