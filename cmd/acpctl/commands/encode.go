package commands

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northboundnetworks/acpgo"
)

var errUnknownFrameType = errors.New("unknown frame type, expected telemetry, command, or system")

func parseFrameType(s string) (acp.FrameType, error) {
	switch s {
	case "telemetry":
		return acp.Telemetry, nil
	case "command":
		return acp.Command, nil
	case "system":
		return acp.System, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownFrameType, s)
	}
}

func encodeCmd() *cobra.Command {
	var (
		typeStr    string
		payloadHex string
		auth       bool
		keyID      uint32
		keyHex     string
		nonce      uint64
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a payload into an ACP frame",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			typ, err := parseFrameType(typeStr)
			if err != nil {
				return err
			}

			payload, err := hex.DecodeString(payloadHex)
			if err != nil {
				return fmt.Errorf("decode --payload hex: %w", err)
			}

			var (
				sess  *acp.Session
				flags uint8
			)

			if auth || typ.RequiresAuth() {
				key, err := hex.DecodeString(keyHex)
				if err != nil {
					return fmt.Errorf("decode --key-hex: %w", err)
				}

				sess, err = acp.NewSession(keyID, key, nonce)
				if err != nil {
					return fmt.Errorf("create session: %w", err)
				}

				flags |= acp.FlagAuthenticated
			}

			if err := acp.Init(); err != nil {
				return fmt.Errorf("init codec: %w", err)
			}

			encoded, err := acp.EncodeFrame(typ, flags, payload, sess)
			if err != nil {
				return fmt.Errorf("encode frame: %w", err)
			}

			collector.IncFramesEncoded(typ.String())

			fmt.Println(hex.EncodeToString(encoded))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&typeStr, "type", "telemetry", "frame type: telemetry, command, system")
	flags.StringVar(&payloadHex, "payload", "", "payload bytes, hex-encoded")
	flags.BoolVar(&auth, "auth", false, "authenticate the frame (implied for command frames)")
	flags.Uint32Var(&keyID, "key-id", 1, "session key ID")
	flags.StringVar(&keyHex, "key-hex", "", "session key, hex-encoded (32 bytes)")
	flags.Uint64Var(&nonce, "nonce", 0, "session nonce")

	return cmd
}
