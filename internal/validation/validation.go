// Package validation checks the names used to build paths and queries:
// location tags, data-store names, collection names and query fields.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// maxNameLength keeps generated file names within common file system limits
const maxNameLength = 200

// Name checks that a tag, data-store or collection name can be used as a
// single path element
func Name(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%s name too long: %d characters (maximum %d)", kind, len(name), maxNameLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid %s name: %q", kind, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%s name cannot contain path separators: %q", kind, name)
	}
	for _, r := range name {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("%s name cannot contain control characters: %q", kind, name)
		}
	}
	return nil
}

// IsReservedField checks if a document field is owned by the store
func IsReservedField(name string) bool {
	return name == "_id"
}

// Field checks that a dotted field path can be placed in a path query:
// every segment must be a non-empty identifier.
func Field(path string) error {
	if path == "" {
		return fmt.Errorf("field cannot be empty")
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return fmt.Errorf("invalid field %q: empty segment", path)
		}
		for i, r := range segment {
			if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
				continue
			}
			return fmt.Errorf("invalid field %q: unexpected character %q", path, r)
		}
	}
	return nil
}
