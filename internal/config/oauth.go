package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// OAuthClientConfig holds the client credentials the sheets client authenticates with.
// Empty endpoint URIs fall back to Google's defaults.
type OAuthClientConfig struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	AuthURI      string `json:"auth_uri" validate:"omitempty,url"`
	TokenURI     string `json:"token_uri" validate:"omitempty,url"`
}

// oauthClientFile is the file downloaded from the Google Cloud console.
// Desktop clients use "installed", web clients use "web".
type oauthClientFile struct {
	Installed *OAuthClientConfig `json:"installed"`
	Web       *OAuthClientConfig `json:"web"`
}

// LoadOAuthClientWithEnv loads oauthClient.<env>.json from the current or home directory
func LoadOAuthClientWithEnv(env string) (*OAuthClientConfig, error) {
	oauthPath, err := findFile(envFileName("oauthClient", env, "json"))
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file: %w", err)
	}

	return LoadOAuthClientFromPath(oauthPath)
}

func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var file oauthClientFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file: %w", err)
	}

	client := file.Installed
	if client == nil {
		client = file.Web
	}
	if client == nil {
		return nil, fmt.Errorf("oauth client file %s has neither an installed nor a web section", path)
	}

	if err := ValidateOAuthClient(client); err != nil {
		return nil, err
	}

	return client, nil
}

func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}
	return nil
}
