// Package aggregate computes cross-model statistics over ModelResults.
package aggregate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nao1215/autoreport/internal/model"
)

// ErrEmptyInput is returned when an aggregate is requested over no models.
// The intersection of zero sets has no meaningful value here.
var ErrEmptyInput = errors.New("no model results supplied")

// CommonMisidentified returns the images misidentified by every model.
//
// The result is ordered by first appearance in the first model's
// misidentified list. As a set it does not depend on the order of results.
func CommonMisidentified(results []*model.ModelResults) ([]string, error) {
	if len(results) == 0 {
		return nil, ErrEmptyInput
	}
	if slices.Contains(results, nil) {
		return nil, fmt.Errorf("nil model results at index %d", slices.Index(results, nil))
	}

	common := results[0].MisidentifiedImages()
	for _, r := range results[1:] {
		if len(common) == 0 {
			break
		}
		missed := make(map[string]struct{}, len(common))
		for _, id := range r.MisidentifiedImages() {
			missed[id] = struct{}{}
		}
		common = slices.DeleteFunc(common, func(id string) bool {
			_, ok := missed[id]
			return !ok
		})
	}

	return common, nil
}

// CommonMisidentifiedCount returns the number of images misidentified by every model.
func CommonMisidentifiedCount(results []*model.ModelResults) (int, error) {
	common, err := CommonMisidentified(results)
	if err != nil {
		return 0, err
	}
	return len(common), nil
}
