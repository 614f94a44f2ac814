package config

import (
	"os"

	"github.com/kumar-pratik/create-es-snapshot/internal/cryptoutil"
)

// EncryptMetadataFile encrypts a metadata file with the provided key.
func EncryptMetadataFile(inputPath, outputPath, key string) error {
	plain, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	parsed, err := cryptoutil.ParseKey(key)
	if err != nil {
		return err
	}
	ciphertext, err := cryptoutil.EncryptMetadata(plain, parsed)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, ciphertext, 0o600)
}
