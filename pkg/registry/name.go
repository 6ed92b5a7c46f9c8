package registry

import (
	"regexp"

	"github.com/entrhq/toolbox/pkg/types"
)

// namePattern is the tool identifier grammar. Every accepted name is also a
// valid C identifier, so generated declarations never need escaping.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// IsValidName reports whether name matches ^[a-z][a-z0-9_]*$.
func IsValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ValidateName returns name unchanged if it is a valid tool identifier, or a
// *types.NameError wrapping types.ErrInvalidName.
func ValidateName(name string) (string, error) {
	if !IsValidName(name) {
		return "", &types.NameError{Name: name, Err: types.ErrInvalidName}
	}
	return name, nil
}
