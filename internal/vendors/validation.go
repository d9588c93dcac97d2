package vendors

import (
	"fmt"
	"strings"

	"github.com/benchdesk/benchdesk/internal/shared"
)

func validate(v Vendor) error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: vendor name is required", shared.ErrValidation)
	}
	if strings.TrimSpace(v.Type) == "" {
		return fmt.Errorf("%w: vendor type is required", shared.ErrValidation)
	}
	return nil
}
