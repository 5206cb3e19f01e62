// Package cli holds the pieces both signpanel consoles share: prompts,
// table output, the command shell and the bootstrap that opens the store
// and the REST client from configuration.
//
// The consoles themselves live in the admin and plugin subpackages; each
// builds a services.State, registers its commands and hands them to Shell.
package cli
