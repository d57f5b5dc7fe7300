// ABOUTME: Built-in persona prompt for the narrator
// ABOUTME: Used as the system instruction unless PERSONA_FILE overrides it
package gemini

import _ "embed"

// DefaultPersona is the Pak ARIESS narrator prompt
//
//go:embed persona.txt
var DefaultPersona string
