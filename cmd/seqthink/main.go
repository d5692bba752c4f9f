// Package main provides the seqthink CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/seqthink/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider string
	model    string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "seqthink",
		Short: "Staged sequential-thinking tracker over MCP",
		Long: `A sequential-thinking tracker that records staged thoughts, analyzes
them, and serves them to MCP clients over stdio.

Thoughts progress through five stages: Problem Definition, Research,
Analysis, Synthesis, Conclusion. Each recorded thought is analyzed for
progress, related thoughts, and process warnings, and can optionally
receive a critical response from an external LLM.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "Critique LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Critique model override")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(clearCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cliOptions() cli.Options {
	opts := cli.DefaultOptions()
	opts.Provider = provider
	opts.Model = model
	opts.Verbose = verbose
	return opts
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run the MCP server over stdio.

Exposes the tools process_thought, generate_summary, clear_history,
export_session, and import_session. Thought history is mirrored to a
SQLite archive under the storage directory (SEQTHINK_STORAGE_DIR,
default ~/.seqthink).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Serve(context.Background(), cliOptions())
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Print the summary of an exported session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Summary(args[0])
		},
	}
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions held in the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Sessions(context.Background())
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [session-id] [file]",
		Short: "Export an archived session to a session file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Export(context.Background(), args[0], args[1])
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [session-id] [file]",
		Short: "Import a session file into the archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Import(context.Background(), args[0], args[1])
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [session-id]",
		Short: "Delete an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Clear(context.Background(), args[0])
		},
	}
}
