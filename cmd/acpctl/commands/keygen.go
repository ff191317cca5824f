package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/northboundnetworks/acpgo/internal/acp/capability"
	"github.com/northboundnetworks/acpgo/internal/acp/session"
)

func keygenCmd() *cobra.Command {
	var (
		keyID uint32
		store bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random 32-byte session key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			key := make([]byte, session.KeySize)

			entropy := capability.CryptoEntropy{}
			if err := entropy.Fill(key); err != nil {
				return fmt.Errorf("generate key material: %w", err)
			}

			if store {
				if err := keys.Store(keyID, key); err != nil {
					return fmt.Errorf("store key %d: %w", keyID, err)
				}
				logger.Info("key stored", "key_id", keyID)
			}

			fmt.Println(hex.EncodeToString(key))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Uint32Var(&keyID, "key-id", 1, "key ID to store under")
	flags.BoolVar(&store, "store", false, "persist the generated key to the configured keystore")

	return cmd
}
