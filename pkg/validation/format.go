// Package validation provides structural checks of business cases and common
// validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/business-case/pkg/constants"
)

// OutputFormats lists the supported report formats.
var OutputFormats = []string{
	constants.OutputFormatTable,
	constants.OutputFormatCSV,
	constants.OutputFormatMarkdown,
	constants.OutputFormatHTML,
	constants.OutputFormatJSON,
	constants.OutputFormatXLSX,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s", strings.Join(OutputFormats, ", "), format)
}
