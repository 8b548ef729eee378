package cli

import (
	"errors"
	"fmt"
	"strings"

	"taskdeck/internal/mutate"
)

// bulkErr phrases a rolled-back batch for the terminal: the user-facing
// message plus the rejected ids.
func bulkErr(err error) error {
	var be *mutate.BulkError
	if !errors.As(err, &be) {
		return err
	}
	return fmt.Errorf("%s (rolled back; failed: %s)", be.Message(), strings.Join(be.FailedIDs(), ", "))
}
