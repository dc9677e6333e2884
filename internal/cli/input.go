package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/syncer"
)

// endpoints returns the raw endpoint data selected by the flags. It is
// decoded by the service.
func (a *app) endpoints(cmd *cobra.Command, svc *syncer.Service, f endpointFlags) (any, error) {
	switch {
	case f.openapi != "":
		return svc.ImportOpenAPI(cmd.Context(), f.openapi)
	case f.input == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case f.input != "":
		data, err := os.ReadFile(f.input)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return data, nil
	default:
		return nil, syncerrors.NewMalformedInputError("API data", "provide --input FILE, --input - or --openapi SOURCE", nil)
	}
}
