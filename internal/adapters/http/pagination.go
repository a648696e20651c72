package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// upstreamToLocal maps upstream cursor parameter names back to the names
// the proxy route accepts.
var upstreamToLocal = map[string]string{
	"ageMin": "minAge",
	"ageMax": "maxAge",
}

// SetCursorLinks adds RFC 8288 Link headers for the upstream's next/prev
// cursors, rewritten to point at the local proxy route.
func SetCursorLinks(c *fiber.Ctx, next, prev string) {
	var links []string
	if l := proxyCursor(next); l != "" {
		links = append(links, "<"+l+`>; rel="next"`)
	}
	if l := proxyCursor(prev); l != "" {
		links = append(links, "<"+l+`>; rel="prev"`)
	}
	if len(links) > 0 {
		c.Set("Link", strings.Join(links, ", "))
	}
}

// proxyCursor turns "/dogs/search?ageMin=2&from=25" into
// "/api/dogs/search?minAge=2&from=25".
func proxyCursor(cursor string) string {
	if cursor == "" {
		return ""
	}
	_, query, _ := strings.Cut(cursor, "?")

	in := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(in)
	out := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(out)

	in.Parse(query)
	in.VisitAll(func(k, v []byte) {
		key := string(k)
		if local, ok := upstreamToLocal[key]; ok {
			key = local
		}
		out.AddBytesV(key, v)
	})

	if out.Len() == 0 {
		return "/api/dogs/search"
	}
	return "/api/dogs/search?" + string(out.QueryString())
}
