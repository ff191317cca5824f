package commands

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/northboundnetworks/acpgo"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// errUnsupportedFormat is returned when the requested output format is not supported.
var errUnsupportedFormat = errors.New("unsupported output format")

// formatFrame renders a decoded frame in the requested format.
func formatFrame(f acp.Frame, consumed int, format string) (string, error) {
	switch format {
	case formatJSON:
		return formatFrameJSON(f, consumed)
	case formatTable:
		return formatFrameTable(f, consumed), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatFrameTable(f acp.Frame, consumed int) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tVALUE")
	fmt.Fprintf(w, "type\t%s\n", f.Type)
	fmt.Fprintf(w, "authenticated\t%v\n", f.Authenticated())
	if f.Authenticated() {
		fmt.Fprintf(w, "sequence\t%d\n", f.Sequence)
	}
	fmt.Fprintf(w, "payload_len\t%d\n", len(f.Payload))
	fmt.Fprintf(w, "payload\t%s\n", hex.EncodeToString(f.Payload))
	fmt.Fprintf(w, "bytes_consumed\t%d\n", consumed)

	if err := w.Flush(); err != nil {
		return ""
	}

	return buf.String()
}

func formatFrameJSON(f acp.Frame, consumed int) (string, error) {
	out := struct {
		Type          string `json:"type"`
		Authenticated bool   `json:"authenticated"`
		Sequence      uint32 `json:"sequence,omitempty"`
		PayloadHex    string `json:"payload_hex"`
		BytesConsumed int    `json:"bytes_consumed"`
	}{
		Type:          f.Type.String(),
		Authenticated: f.Authenticated(),
		Sequence:      f.Sequence,
		PayloadHex:    hex.EncodeToString(f.Payload),
		BytesConsumed: consumed,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data) + "\n", nil
}
