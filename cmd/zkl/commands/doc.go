// Package commands defines the zkl CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create an identity, register it and initialize its inbox
//   - register       Re-run registration for the stored identity
//   - resolve        Print the encryption key registered for an address
//   - send           Encrypt a file and deliver it to a recipient's inbox
//   - inbox ls       List the records in your inbox
//   - inbox read     Fetch and decrypt one inbox message
//   - fingerprint    Print the identity fingerprint
//
// # Implementation
//
// The root command loads configuration, sets up logging and metrics and
// builds the dependency graph (stores, ledger and content clients,
// services) before any subcommand runs. The passphrase comes from -p,
// then $ZKL_PASSPHRASE, then an interactive prompt.
package commands
