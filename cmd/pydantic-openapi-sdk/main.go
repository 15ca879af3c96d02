package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orangekame3/pydantic-openapi-sdk/internal/cli"
)

const version = "0.3.0"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)

	root := &cobra.Command{
		Use:           "pydantic-openapi-sdk",
		Short:         "Generate typed Python SDKs from OpenAPI specs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCmd(logger))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newGenerateCmd(logger zerolog.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Python SDK from an OpenAPI specification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerate(cli.RunGenerateParams{
				ConfigPath: configPath,
				Flags:      cmd.Flags(),
				Logger:     logger,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a .yaml/.yml config file")
	cmd.Flags().String("spec", "", "OpenAPI spec file or URL (.yaml/.yml/.json)")
	cmd.Flags().String("out", "", "Output directory for the generated SDK")
	cmd.Flags().String("package", "", "Package name for the generated SDK")
	cmd.Flags().String("base-url", "", "Default base URL for the generated client")
	cmd.Flags().Int("timeout", 30, "Default HTTP timeout in seconds for the generated client")
	cmd.Flags().String("user-agent", "", "Custom User-Agent header for the generated client")
	cmd.Flags().String("client-name", "", "Name for the generated client class")
	cmd.Flags().Bool("verbose", false, "Enable verbose output")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file or URL")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the generator version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
