package cloudflare

import (
	"encoding/json"
	"fmt"

	"github.com/ben-haas/clawhouse/internal/domain"
)

// Output formats accepted by Render.
const (
	FormatJSON = "json"
	FormatCurl = "curl"
)

// Render formats r for printing. JSON output is the request descriptor
// itself; curl output is a pasteable shell command.
func (r Request) Render(format string) (string, error) {
	switch format {
	case "", FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("cloudflare: failed to encode request: %w", err)
		}
		return string(data), nil
	case FormatCurl:
		return r.Curl(), nil
	default:
		return "", fmt.Errorf("%w: unsupported output format %q (want %s or %s)", domain.ErrInvalidConfig, format, FormatJSON, FormatCurl)
	}
}
