package model

import (
	"path/filepath"
	"strings"
)

// DefaultSuffix is the file name suffix separating the model name from the
// rest of a result file name, as in "VGG19_results.csv".
const DefaultSuffix = "_results"

// ModelNameFromPath derives a model name from a result file path.
// The directory and extension are dropped and a trailing suffix is removed.
// When the base name does not end with suffix, or consists only of the
// suffix, the whole base name is used.
func ModelNameFromPath(path, suffix string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if suffix == "" {
		return base
	}
	name, found := strings.CutSuffix(base, suffix)
	if !found || name == "" {
		return base
	}
	return name
}
