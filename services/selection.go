package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fenilmodi00/meabot-backend/shared"
)

// ErrInvalidSelection is returned when a menu selection does not address an
// existing item
var ErrInvalidSelection = errors.New("invalid selection")

// ParseSelection extracts the positional index from callback data of the
// form prefix + "<n>" and checks it against a list of length n. Failures are
// validation errors wrapping ErrInvalidSelection.
func ParseSelection(data, prefix string, n int) (int, error) {
	if !strings.HasPrefix(data, prefix) {
		return 0, invalidSelection(data, n)
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || idx < 0 || idx >= n {
		return 0, invalidSelection(data, n)
	}
	return idx, nil
}

func invalidSelection(data string, n int) error {
	return shared.NewServiceError(shared.ErrorCategoryValidation, "INVALID_SELECTION",
		fmt.Sprintf("selection %q does not address one of %d items", data, n),
		"BotMenu", "select", false, ErrInvalidSelection)
}
