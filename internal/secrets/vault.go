package secrets

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

// KeyVault reads secrets from an Azure Key Vault.
// Credentials come from DefaultAzureCredential: environment variables,
// managed identity, or the Azure CLI login.
type KeyVault struct {
	client *azsecrets.Client
	logger *zap.Logger
}

func NewKeyVault(vaultName string, logger *zap.Logger) (*KeyVault, error) {
	if vaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", vaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("Key Vault client initialized", zap.String("vault_url", vaultURL))
	return &KeyVault{client: client, logger: logger}, nil
}

// GetSecret returns the latest version of the named secret
func (v *KeyVault) GetSecret(ctx context.Context, name string) (string, error) {
	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret %q has no value", name)
	}
	v.logger.Debug("secret fetched from Key Vault", zap.String("secret_name", name))
	return *resp.Value, nil
}
