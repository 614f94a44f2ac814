package config

import (
	"fmt"
	"os"
)

const (
	EnvAccessKey = "AWS_ACCESS_KEY_ID"
	EnvSecretKey = "AWS_SECRET_ACCESS_KEY"
)

// LoadCredentials reads the required storage credentials from the
// environment. Either variable missing is fatal for the run.
func LoadCredentials() (Credentials, error) {
	access, ok := os.LookupEnv(EnvAccessKey)
	if !ok {
		return Credentials{}, fmt.Errorf("required environment variable %s is not set", EnvAccessKey)
	}
	secret, ok := os.LookupEnv(EnvSecretKey)
	if !ok {
		return Credentials{}, fmt.Errorf("required environment variable %s is not set", EnvSecretKey)
	}
	return Credentials{AccessKey: access, SecretKey: secret}, nil
}
