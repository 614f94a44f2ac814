package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kumar-pratik/create-es-snapshot/internal/app"
	"github.com/kumar-pratik/create-es-snapshot/internal/config"
	"github.com/kumar-pratik/create-es-snapshot/internal/logging"
	"github.com/kumar-pratik/create-es-snapshot/internal/version"
)

type rootFlags struct {
	MetadataPath string
	LogLevel     string
	LogFormat    string
}

func main() {
	root := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "essnap",
		Short: "Elasticsearch snapshot engine: register a repository and trigger a dated snapshot",
	}

	rootCmd.PersistentFlags().StringVar(&root.MetadataPath, "metadata", "", "Path to the snapshot metadata yaml file")
	rootCmd.PersistentFlags().StringVar(&root.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&root.LogFormat, "log-format", "", "Log format (json, console)")

	rootCmd.AddCommand(newSnapshotCmd(root))
	rootCmd.AddCommand(newRenderCmd(root))
	rootCmd.AddCommand(newVerifyCmd(root))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSnapshotCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Run the full pipeline: render payloads, register, verify, snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, logger, err := loadMetadata(root)
			if err != nil {
				return err
			}
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			ctx, cancel := operationContext(meta)
			defer cancel()
			return app.New(meta, creds, logger).Run(ctx)
		},
	}
}

func newRenderCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render the bucket and snapshot payloads without touching the cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, logger, err := loadMetadata(root)
			if err != nil {
				return err
			}
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			ctx, cancel := operationContext(meta)
			defer cancel()
			return app.New(meta, creds, logger).RenderPayloads(ctx)
		},
	}
}

func newVerifyCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Ask the cluster to verify the configured repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, logger, err := loadMetadata(root)
			if err != nil {
				return err
			}
			ctx, cancel := operationContext(meta)
			defer cancel()
			return app.New(meta, config.Credentials{}, logger).Verify(ctx)
		},
	}
}

func newConfigCmd() *cobra.Command {
	var input string
	var output string
	var key string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Metadata file utilities",
	}

	encrypt := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a metadata file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" || output == "" || key == "" {
				return fmt.Errorf("--input, --output, and --key are required")
			}
			return config.EncryptMetadataFile(input, output, key)
		},
	}
	encrypt.Flags().StringVar(&input, "input", "", "Input metadata file")
	encrypt.Flags().StringVar(&output, "output", "", "Output encrypted metadata file")
	encrypt.Flags().StringVar(&key, "key", "", "Encryption key (base64 or hex)")

	cmd.AddCommand(encrypt)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("essnap %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

func loadMetadata(root *rootFlags) (*config.Metadata, zerolog.Logger, error) {
	bootLog := logging.Configure("info", "json")
	meta, err := config.Load(root.MetadataPath, bootLog)
	if err != nil {
		return nil, bootLog, err
	}

	level := "info"
	format := "json"
	if meta != nil {
		level = meta.Global.LogLevel
		format = meta.Global.LogFormat
	}
	if root.LogLevel != "" {
		level = root.LogLevel
	}
	if root.LogFormat != "" {
		format = root.LogFormat
	}
	return meta, logging.Configure(level, format), nil
}

func operationContext(meta *config.Metadata) (context.Context, context.CancelFunc) {
	timeout := 60 * time.Second
	if meta != nil && meta.Global.OperationTimeout > 0 {
		timeout = meta.Global.OperationTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}
