package commands

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/northboundnetworks/acpgo/internal/acp/capability"
	"github.com/northboundnetworks/acpgo/internal/acp/session"
)

// parseKeyID parses a decimal key ID argument into uint32.
func parseKeyID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse key ID %q: %w", s, err)
	}
	return uint32(v), nil
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage session keys in the configured keystore",
	}

	cmd.AddCommand(sessionShowCmd())
	cmd.AddCommand(sessionRotateCmd())
	cmd.AddCommand(sessionTerminateCmd())

	return cmd
}

func sessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key-id>",
		Short: "Show the key material stored for a key ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			keyID, err := parseKeyID(args[0])
			if err != nil {
				return err
			}

			buf := make([]byte, session.KeySize)
			n, err := keys.Load(keyID, buf)
			if err != nil {
				return fmt.Errorf("load key %d: %w", keyID, err)
			}

			fmt.Printf("key_id: %d\nkey:    %s\n", keyID, hex.EncodeToString(buf[:n]))

			return nil
		},
	}
}

func sessionRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate <key-id>",
		Short: "Replace the key material for a key ID with freshly generated bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			keyID, err := parseKeyID(args[0])
			if err != nil {
				return err
			}

			key := make([]byte, session.KeySize)
			entropy := capability.CryptoEntropy{}
			if err := entropy.Fill(key); err != nil {
				return fmt.Errorf("generate key material: %w", err)
			}

			if err := keys.Store(keyID, key); err != nil {
				return fmt.Errorf("store rotated key %d: %w", keyID, err)
			}

			logger.Info("session key rotated", "key_id", keyID)
			fmt.Println(hex.EncodeToString(key))

			return nil
		},
	}
}

func sessionTerminateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terminate <key-id>",
		Short: "Erase the key material for a key ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			keyID, err := parseKeyID(args[0])
			if err != nil {
				return err
			}

			if err := keys.Erase(keyID); err != nil {
				return fmt.Errorf("erase key %d: %w", keyID, err)
			}

			logger.Info("session key terminated", "key_id", keyID)
			fmt.Printf("key %d erased.\n", keyID)

			return nil
		},
	}
}
