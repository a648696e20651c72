package usecases

import (
	"slices"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/samirrijal/pawsearch/internal/core/domain"
)

// SortByBreed returns a breed-ordered copy of dogs. Comparison follows the
// English collation at base strength, so case and accents are ignored, and
// dogs with equivalent breeds keep their input order. reverse yields the
// ascending view read backwards. The input slice is never modified.
func SortByBreed(dogs []domain.Dog, reverse bool) []domain.Dog {
	out := make([]domain.Dog, len(dogs))
	copy(out, dogs)

	col := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].Breed, out[j].Breed) < 0
	})
	if reverse {
		slices.Reverse(out)
	}
	return out
}
