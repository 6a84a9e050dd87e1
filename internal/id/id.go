// Package id generates prefixed identifiers for catalog records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Identifiers are shown in CLI output and typed back as arguments, so they
// avoid mixed case and punctuation.
const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	length   = 16
)

// Generate returns prefix-xxxxxxxxxxxxxxxx, e.g. "imp-3k9w0c1qz7m2d8xa".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
