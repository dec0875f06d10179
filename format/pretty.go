package format

import (
	"strings"

	"github.com/k0kubun/pp/v3"
)

// Pretty returns a multi-line dump of v. The value is normalized first, so
// cycles and unencodable members are rendered the same way as in Serialize.
func Pretty(v any, colors bool) string {
	printer := pp.New()
	printer.SetColoringEnabled(colors)
	printer.SetExportedOnly(true)
	return strings.TrimRight(printer.Sprint(Normalize(v)), "\n")
}
