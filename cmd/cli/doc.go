// Package cli assembles the deploysync command-line interface. It wires the
// Cobra root command, the layered configuration loader and the zap logger,
// and registers the parse and sync subcommands.
package cli
