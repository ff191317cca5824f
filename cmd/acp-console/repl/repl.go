// Package repl builds the cobra command tree served inside the
// interactive acp-console. Unlike cmd/acpctl, which operates against a
// real keystore, acp-console runs entirely against an in-memory
// loopback: a pair of Sessions sharing one key, one standing in for the
// transmitting end of a link and the other for the receiving end, so a
// user can watch sequence numbers, replay rejection, and HMAC failure
// modes without any external process.
package repl

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northboundnetworks/acpgo"
)

var errNoSessionInitialised = errors.New("no session initialised: run 'init' first")

// loopback holds the in-memory state one acp-console run operates on.
type loopback struct {
	tx   *acp.Session
	rx   *acp.Session
	last []byte
}

// Commands returns a constructor for the acp-console command tree. The
// console calls this once per input line, so a fresh *cobra.Command is
// built each time while loopback state persists across calls via the
// closure.
func Commands() func() *cobra.Command {
	lb := &loopback{}

	return func() *cobra.Command {
		root := &cobra.Command{
			Use:           "acp-console",
			Short:         "Interactive ACP frame codec console",
			SilenceUsage:  true,
			SilenceErrors: true,
		}

		root.AddCommand(initCmd(lb))
		root.AddCommand(encodeCmd(lb))
		root.AddCommand(decodeCmd(lb))
		root.AddCommand(inspectCmd(lb))

		return root
	}
}

func initCmd(lb *loopback) *cobra.Command {
	var (
		keyID  uint32
		keyHex string
		nonce  uint64
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a loopback session pair sharing one key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := acp.Init(); err != nil {
				return fmt.Errorf("init codec: %w", err)
			}

			key, err := hex.DecodeString(keyHex)
			if err != nil {
				return fmt.Errorf("decode --key-hex: %w", err)
			}

			tx, err := acp.NewSession(keyID, key, nonce)
			if err != nil {
				return fmt.Errorf("create tx session: %w", err)
			}

			rx, err := acp.NewSession(keyID, key, nonce)
			if err != nil {
				return fmt.Errorf("create rx session: %w", err)
			}

			lb.tx, lb.rx, lb.last = tx, rx, nil

			fmt.Printf("session initialised: key_id=%d\n", keyID)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Uint32Var(&keyID, "key-id", 1, "session key ID")
	flags.StringVar(&keyHex, "key-hex", "", "session key, hex-encoded (32 bytes)")
	flags.Uint64Var(&nonce, "nonce", 0, "session nonce")

	return cmd
}

func encodeCmd(lb *loopback) *cobra.Command {
	var (
		typeStr    string
		payloadHex string
		auth       bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a payload using the loopback tx session",
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

			var flags uint8
			var sess *acp.Session
			if auth || typ.RequiresAuth() {
				if lb.tx == nil {
					return errNoSessionInitialised
				}
				flags |= acp.FlagAuthenticated
				sess = lb.tx
			}

			encoded, err := acp.EncodeFrame(typ, flags, payload, sess)
			if err != nil {
				return fmt.Errorf("encode frame: %w", err)
			}

			lb.last = encoded
			fmt.Println(hex.EncodeToString(encoded))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&typeStr, "type", "telemetry", "frame type: telemetry, command, system")
	flags.StringVar(&payloadHex, "payload", "", "payload bytes, hex-encoded")
	flags.BoolVar(&auth, "auth", false, "authenticate using the loopback session")

	return cmd
}

func decodeCmd(lb *loopback) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [hex-frame]",
		Short: "Decode a frame using the loopback rx session (defaults to the last encoded frame)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var input []byte

			if len(args) == 1 {
				b, err := hex.DecodeString(args[0])
				if err != nil {
					return fmt.Errorf("decode hex argument: %w", err)
				}
				input = b
			} else {
				if lb.last == nil {
					return errors.New("no frame to decode: encode one first or pass a hex argument")
				}
				input = lb.last
			}

			f, consumed, err := acp.DecodeFrame(input, lb.rx)
			if err != nil {
				return fmt.Errorf("decode frame: %w", err)
			}

			fmt.Printf("type:          %s\n", f.Type)
			fmt.Printf("authenticated: %v\n", f.Authenticated())
			if f.Authenticated() {
				fmt.Printf("sequence:      %d\n", f.Sequence)
			}
			fmt.Printf("payload:       %s\n", hex.EncodeToString(f.Payload))
			fmt.Printf("consumed:      %d bytes\n", consumed)

			return nil
		},
	}

	return cmd
}

func inspectCmd(lb *loopback) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the loopback rx session's replay-window anchor",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if lb.rx == nil {
				return errNoSessionInitialised
			}

			fmt.Printf("rx_anchor: %d\n", lb.rx.RxAnchor())

			return nil
		},
	}
}

func parseFrameType(s string) (acp.FrameType, error) {
	switch s {
	case "telemetry":
		return acp.Telemetry, nil
	case "command":
		return acp.Command, nil
	case "system":
		return acp.System, nil
	default:
		return 0, fmt.Errorf("unknown frame type %q, expected telemetry, command, or system", s)
	}
}
