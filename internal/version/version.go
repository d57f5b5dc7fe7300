// ABOUTME: Build and product identification
// ABOUTME: Reported in logs, the TUI header and the -version flag
package version

// Version is overridden at build time with
// -ldflags "-X github.com/pak-ariess/voicenote-go/internal/version.Version=..."
var Version = "0.3.0"

const (
	Product = "Pak ARIESS Voice Notes"

	Manufacturer = "pak-ariess"
)

// String returns the product and version for display
func String() string {
	return Product + " " + Version
}
