package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quickmart/shelfsync/internal/creds"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

var (
	credsClientID     string
	credsClientSecret string
	credsGrantType    string
	credsOut          string
)

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Write an encoded credentials file for the remote catalog API",
	Long: `Creds encodes the OAuth client credentials into the JSON file the
ingest command reads. Values are base64-encoded at rest.`,
	RunE: runCreds,
}

func init() {
	credsCmd.Flags().StringVar(&credsClientID, "client-id", "", "OAuth client id")
	credsCmd.Flags().StringVar(&credsClientSecret, "client-secret", "", "OAuth client secret")
	credsCmd.Flags().StringVar(&credsGrantType, "grant-type", creds.DefaultGrantType, "OAuth grant type")
	credsCmd.Flags().StringVarP(&credsOut, "output", "o", "credentials.json", "output file")
	rootCmd.AddCommand(credsCmd)
}

func runCreds(cmd *cobra.Command, _ []string) error {
	if credsClientID == "" || credsClientSecret == "" {
		return pkgerrors.NewConfigError("creds", "client-id and client-secret are required", nil)
	}

	err := creds.Encode(credsOut, &creds.Credentials{
		ClientID:     credsClientID,
		ClientSecret: credsClientSecret,
		GrantType:    credsGrantType,
	})
	if err != nil {
		return err
	}
	cmd.Println("Wrote", credsOut)
	return nil
}
