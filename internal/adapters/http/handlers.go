package http

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pawsearch/internal/adapters/upstream"
	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/core/ports"
	"github.com/samirrijal/pawsearch/internal/core/usecases"
	"github.com/samirrijal/pawsearch/internal/pkg/geospatial"
)

const (
	msgFetchDogs      = "Failed to fetch dogs"
	msgProcessRequest = "Failed to process request"
	msgExpectedIDs    = "Invalid request body: expected an array of dog IDs"
	msgFetchBreeds    = "Failed to fetch breeds"
)

// credentials forwards the caller's Cookie header verbatim.
func credentials(c *fiber.Ctx) domain.Credentials {
	return domain.Credentials{Cookie: c.Get(fiber.HeaderCookie)}
}

// ProxySearchHandler forwards GET /api/dogs/search to the upstream
// /dogs/search, remapping local parameter names. The upstream status and
// body are returned as-is.
func ProxySearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds := credentials(c)
		if creds.Empty() {
			return c.Redirect(deps.loginPath(), fiber.StatusTemporaryRedirect)
		}

		query := upstream.ProxyQuery(func(key string) []string {
			var vals []string
			for _, v := range c.Context().QueryArgs().PeekMulti(key) {
				vals = append(vals, string(v))
			}
			return vals
		})

		resp, err := deps.Upstream.Forward(c.UserContext(), creds, fiber.MethodGet, "/dogs/search?"+query, nil)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("proxy dog search", "error", err)
			return proxyError(c, fiber.StatusInternalServerError, msgFetchDogs)
		}
		return passthrough(c, resp)
	}
}

// ProxyDogsHandler forwards POST /api/dogs/search (a JSON array of dog IDs)
// to the upstream POST /dogs.
func ProxyDogsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds := credentials(c)
		if creds.Empty() {
			return c.Redirect(deps.loginPath(), fiber.StatusTemporaryRedirect)
		}

		// Any JSON array is forwarded as sent; the upstream judges its elements.
		var ids []json.RawMessage
		if err := json.Unmarshal(c.Body(), &ids); err != nil || ids == nil {
			return proxyError(c, fiber.StatusBadRequest, msgExpectedIDs)
		}

		body := append([]byte(nil), c.Body()...)
		resp, err := deps.Upstream.Forward(c.UserContext(), creds, fiber.MethodPost, "/dogs", body)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("proxy dog hydration", "error", err, "ids", len(ids))
			return proxyError(c, fiber.StatusInternalServerError, msgProcessRequest)
		}
		return passthrough(c, resp)
	}
}

func passthrough(c *fiber.Ctx, resp *upstream.Response) error {
	if resp.ContentType != "" {
		c.Set(fiber.HeaderContentType, resp.ContentType)
	}
	return c.Status(resp.Status).Send(resp.Body)
}

// BreedsHandler returns the cached breed catalog. ?refresh=true drops the
// cache first.
func BreedsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds := credentials(c)
		if creds.Empty() {
			return c.Redirect(deps.loginPath(), fiber.StatusSeeOther)
		}

		ctx := c.UserContext()
		var (
			breeds []string
			err    error
		)
		if c.QueryBool("refresh", false) {
			breeds, err = deps.Breeds.Refresh(ctx, creds)
		} else {
			breeds, err = deps.Breeds.List(ctx, creds)
		}
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				deps.Breeds.Invalidate(ctx)
				return c.Redirect(deps.loginPath(), fiber.StatusSeeOther)
			}
			LoggerFromCtx(ctx).Error("list breeds", "error", err)
			return errBadGateway(c, msgFetchBreeds)
		}
		return c.JSON(breeds)
	}
}

// searchRequest is the body of POST /api/search.
type searchRequest struct {
	Breeds      []string `json:"breeds"`
	ZipCodes    []string `json:"zipCodes"`
	MinAge      *int     `json:"minAge"`
	MaxAge      *int     `json:"maxAge"`
	Sort        string   `json:"sort"`
	Size        int      `json:"size"`
	From        string   `json:"from"`
	ZipCode     string   `json:"zipCode"`
	RadiusMiles float64  `json:"radiusMiles"`
	Reverse     bool     `json:"reverse"`
}

func (r searchRequest) filter() domain.SearchFilter {
	f := domain.SearchFilter{
		Breeds:   r.Breeds,
		ZipCodes: r.ZipCodes,
		MinAge:   r.MinAge,
		MaxAge:   r.MaxAge,
		Sort:     r.Sort,
		Size:     r.Size,
		From:     r.From,
	}
	if r.ZipCode != "" || r.RadiusMiles != 0 {
		f.Near = &domain.GeoFilter{ZipCode: r.ZipCode, RadiusMiles: r.RadiusMiles}
	}
	return f
}

// SearchHandler runs the two-phase search for the caller's session and
// returns the resulting state with dogs ordered by breed.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds := credentials(c)
		if creds.Empty() {
			return c.Redirect(deps.loginPath(), fiber.StatusSeeOther)
		}

		var req searchRequest
		if len(c.Body()) > 0 {
			if err := json.Unmarshal(c.Body(), &req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		filter := req.filter()
		if err := filter.Validate(); err != nil {
			return errBadRequest(c, err.Error())
		}
		if filter.Near != nil && deps.Locations == nil {
			return errServiceUnavailable(c, "radius search is not available")
		}

		redirect := false
		nav := ports.NavigatorFunc(func(context.Context) { redirect = true })

		svc := deps.Sessions.Get(creds)
		state := svc.Search(c.UserContext(), creds, filter, nav)
		if redirect {
			return c.Redirect(deps.loginPath(), fiber.StatusSeeOther)
		}

		state.Dogs = usecases.SortByBreed(state.Dogs, req.Reverse)
		SetCursorLinks(c, state.Next, state.Prev)
		return c.JSON(state)
	}
}

// SearchStateHandler returns the session's latest applied search state.
func SearchStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds := credentials(c)
		if creds.Empty() {
			return c.Redirect(deps.loginPath(), fiber.StatusSeeOther)
		}

		state := deps.Sessions.Get(creds).Current()
		state.Dogs = usecases.SortByBreed(state.Dogs, c.QueryBool("reverse", false))
		return c.JSON(state)
	}
}

// BoundingBoxHandler returns the lat/lon rectangle around a point.
func BoundingBoxHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vals [3]float64
		for i, k := range []string{"lat", "lon", "radius"} {
			v, err := strconv.ParseFloat(c.Query(k), 64)
			if err != nil {
				return errBadRequest(c, "lat, lon and radius must be numbers")
			}
			vals[i] = v
		}

		box, err := geospatial.BoundingBox(domain.GeoPoint{Lat: vals[0], Lon: vals[1]}, vals[2])
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(box)
	}
}
