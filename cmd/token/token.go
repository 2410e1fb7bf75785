// Package token implements the commands that manage the encrypted registry token.
package token

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/hpi-schul-cloud/sc-app-deploy/app"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/output"
	"github.com/hpi-schul-cloud/sc-app-deploy/cmd/utils"
	"github.com/hpi-schul-cloud/sc-app-deploy/secrets"
	"github.com/spf13/cobra"
)

func NewCmdToken() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the encrypted registry token",
		Long: `Generate an encryption key and encrypt the registry token with it.

Store the key as SCDEPLOY_ENCRYPTION_KEY and the encrypted token as
SCDEPLOY_DOCKER_TOKEN_ENCRYPTED, either in the environment or in the .env file
of the data directory.`,
	}

	cmd.AddCommand(NewCmdTokenGenerateKey())
	cmd.AddCommand(NewCmdTokenEncrypt())
	return cmd
}

func NewCmdTokenGenerateKey() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-key",
		Short: "Generate a new encryption key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secrets.GenerateKey()
			if err != nil {
				return utils.HandleCommandError(cmd, "generate key", err)
			}
			return output.FprintPlain(cmd, "%s", key)
		},
	}
}

func NewCmdTokenEncrypt() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "encrypt [token]",
		Short: "Encrypt a registry token",
		Long: `Encrypt a registry token. The token is read from standard input when it
is not given as an argument. The key defaults to SCDEPLOY_ENCRYPTION_KEY.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				if cfg := app.GetConfig(); cfg != nil {
					key = cfg.EncryptionKey
				}
			}
			if key == "" {
				return utils.HandleCommandError(cmd, "encrypt token",
					errors.New("no encryption key, pass --key or set SCDEPLOY_ENCRYPTION_KEY"))
			}

			plaintext, err := readToken(cmd, args)
			if err != nil {
				return utils.HandleCommandError(cmd, "encrypt token", err)
			}

			encryptionSvc, err := secrets.NewEncryptionService(key)
			if err != nil {
				return utils.HandleCommandError(cmd, "encrypt token", err)
			}
			encrypted, err := encryptionSvc.Encrypt(plaintext)
			if err != nil {
				return utils.HandleCommandError(cmd, "encrypt token", err)
			}
			return output.FprintPlain(cmd, "%s", encrypted)
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Encryption key generated by 'token generate-key'")
	return cmd
}

func readToken(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		if token := strings.TrimSpace(args[0]); token != "" {
			return token, nil
		}
		return "", errors.New("token cannot be empty")
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return "", errors.New("no token given on standard input")
	}
	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return "", errors.New("token cannot be empty")
	}
	return token, nil
}
