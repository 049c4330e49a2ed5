package cmd

import (
	"fmt"

	kerrors "github.com/PolarWolf314/jsonsig/internal/errors"
	"github.com/PolarWolf314/jsonsig/internal/utils"
	"github.com/PolarWolf314/jsonsig/internal/workflows"
	"github.com/spf13/cobra"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt <signature|->",
	Short: "Decrypts a signature with the cached private key",
	Long: `Decrypts the base64 signature field of a jsonsig document with the cached
private key and prints the original message. Pass - to read the signature
from stdin. The key pair is never generated by this command.`,
	Example: `  jsonsig decrypt "$(jsonsig 'hello world' | jq -r .signature)"
  jq -r .signature response.json | jsonsig decrypt -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")

		signature := args[0]
		if signature == "-" {
			Logger.Debugf("Reading signature from stdin")
			data, err := utils.ReadStdin()
			if err != nil {
				return fmt.Errorf("%w: %w", kerrors.ErrValidation, err)
			}
			signature = string(data)
		}

		settings, err := resolveSettings(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd, settings)
		defer cancel()

		plaintext, err := workflows.Decrypt(ctx, workflows.DecryptOptions{
			Signature:  signature,
			Location:   settings.Location(),
			Lock:       settings.Lock,
			Audit:      settings.Audit,
			Passphrase: passphraseFromEnv(),
			Logger:     Logger,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), plaintext)
		Logger.Infof("Decrypt command completed")
		return nil
	},
}
