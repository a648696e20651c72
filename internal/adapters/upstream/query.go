package upstream

import (
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/pawsearch/internal/core/domain"
)

// SearchQuery encodes a filter in the upstream's /dogs/search format:
// breeds and zipCodes as repeated keys, ageMin/ageMax/sort/size/from singular.
func SearchQuery(f domain.SearchFilter) string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)

	for _, b := range f.Breeds {
		args.Add("breeds", b)
	}
	for _, z := range f.ZipCodes {
		args.Add("zipCodes", z)
	}
	if f.MinAge != nil {
		args.Add("ageMin", strconv.Itoa(*f.MinAge))
	}
	if f.MaxAge != nil {
		args.Add("ageMax", strconv.Itoa(*f.MaxAge))
	}
	if f.Sort != "" {
		args.Add("sort", f.Sort)
	}
	if f.Size > 0 {
		args.Add("size", strconv.Itoa(f.Size))
	}
	if f.From != "" {
		args.Add("from", f.From)
	}
	return string(args.QueryString())
}

// ProxyQuery remaps the local proxy parameter names to upstream names.
// lookup returns every value for a local key, in request order.
//
//	breed, breeds -> breeds
//	minAge        -> ageMin
//	maxAge        -> ageMax
//	sort, zipCodes, size, from pass through
func ProxyQuery(lookup func(key string) []string) string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)

	remap := []struct{ local, upstream string }{
		{"breed", "breeds"},
		{"breeds", "breeds"},
		{"minAge", "ageMin"},
		{"maxAge", "ageMax"},
		{"sort", "sort"},
		{"zipCodes", "zipCodes"},
		{"size", "size"},
		{"from", "from"},
	}
	for _, m := range remap {
		for _, v := range lookup(m.local) {
			if v != "" {
				args.Add(m.upstream, v)
			}
		}
	}
	return string(args.QueryString())
}
