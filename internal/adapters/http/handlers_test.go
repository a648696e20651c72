package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/pawsearch/internal/adapters/http"
	"github.com/samirrijal/pawsearch/internal/adapters/upstream"
	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/core/usecases"
)

const testCookie = "fetch-access-token=abc123"

// ---- Test helpers ----

func newUpstream(t *testing.T, h http.Handler) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return upstream.New(srv.URL, 5*time.Second)
}

func makeDeps(t *testing.T, client *upstream.Client) *handler.Dependencies {
	t.Helper()
	breeds := usecases.NewBreedCatalog(client, nil, time.Hour)
	locations := usecases.NewLocationService(client, nil, 0, 0)
	sessions := usecases.NewSessionRegistry(100, time.Hour, func(session string) *usecases.SearchService {
		return usecases.NewSearchService(client,
			usecases.WithBreedCatalog(breeds),
			usecases.WithLocations(locations),
			usecases.WithSession(session),
		)
	})
	t.Cleanup(sessions.Stop)

	return &handler.Dependencies{
		Upstream:  client,
		Sessions:  sessions,
		Breeds:    breeds,
		Locations: locations,
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func withCookie(req *http.Request) *http.Request {
	req.Header.Set("Cookie", testCookie)
	return req
}

// dogAPI fakes the upstream endpoints the orchestrator calls.
func dogAPI(t *testing.T, dogs []domain.Dog, next string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dogs/search", func(w http.ResponseWriter, r *http.Request) {
		ids := make([]string, len(dogs))
		for i, d := range dogs {
			ids[i] = d.ID
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.SearchResult{ResultIDs: ids, Total: len(ids), Next: next})
	})
	mux.HandleFunc("/dogs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST /dogs, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dogs)
	})
	return mux
}

// ---- Proxy: GET /api/dogs/search ----

func TestProxySearch_RedirectsWithoutCookie(t *testing.T) {
	var hits int32
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	app := setupApp(makeDeps(t, client))

	req := httptest.NewRequest("GET", "/api/dogs/search?breed=Pug", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("expected no upstream call without a cookie")
	}
}

func TestProxySearch_RemapsParameters(t *testing.T) {
	var gotQuery map[string][]string
	var gotCookie string
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dogs/search" {
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		gotCookie = r.Header.Get("Cookie")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultIds":[],"total":0}`))
	}))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("GET",
		"/api/dogs/search?breed=Pug&minAge=2&maxAge=8&sort=breed:asc&zipCodes=10001&zipCodes=10002", nil))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	checks := map[string]string{"breeds": "Pug", "ageMin": "2", "ageMax": "8", "sort": "breed:asc"}
	for k, want := range checks {
		if got := gotQuery[k]; len(got) != 1 || got[0] != want {
			t.Errorf("expected %s=%s upstream, got %v", k, want, got)
		}
	}
	if z := gotQuery["zipCodes"]; len(z) != 2 {
		t.Errorf("expected 2 zipCodes, got %v", z)
	}
	for _, local := range []string{"breed", "minAge", "maxAge"} {
		if _, ok := gotQuery[local]; ok {
			t.Errorf("local parameter %s leaked upstream", local)
		}
	}
	if gotCookie != testCookie {
		t.Errorf("expected cookie %q forwarded, got %q", testCookie, gotCookie)
	}
}

func TestProxySearch_PassesStatusAndBodyThrough(t *testing.T) {
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
	}))
	app := setupApp(makeDeps(t, client))

	resp, err := app.Test(withCookie(httptest.NewRequest("GET", "/api/dogs/search", nil)), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected upstream 401 passed through, got %d", resp.StatusCode)
	}
	if body := string(readBody(t, resp.Body)); body != "Unauthorized" {
		t.Errorf("expected verbatim body, got %q", body)
	}
}

func TestProxySearch_TransportError(t *testing.T) {
	client := upstream.New("http://127.0.0.1:1", time.Second)
	app := setupApp(makeDeps(t, client))

	resp, err := app.Test(withCookie(httptest.NewRequest("GET", "/api/dogs/search?breed=Pug", nil)), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["error"] != "Failed to fetch dogs" {
		t.Errorf("unexpected error body: %v", body)
	}
}

// ---- Proxy: POST /api/dogs/search ----

func TestProxyDogs_RejectsNonArray(t *testing.T) {
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for an invalid body")
	}))
	app := setupApp(makeDeps(t, client))

	for _, body := range []string{`{"ids":["a"]}`, `"a"`, `null`, `not json`} {
		req := withCookie(httptest.NewRequest("POST", "/api/dogs/search", strings.NewReader(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("body %s: expected 400, got %d", body, resp.StatusCode)
			continue
		}
		var out map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&out)
		if out["error"] != "Invalid request body: expected an array of dog IDs" {
			t.Errorf("body %s: unexpected error %q", body, out["error"])
		}
	}
}

func TestProxyDogs_ForwardsToUpstream(t *testing.T) {
	var gotIDs []string
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/dogs" {
			t.Errorf("expected POST /dogs, got %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotIDs)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","name":"Rex","breed":"Pug","age":3,"zip_code":"10001","img":"x"}]`))
	}))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("POST", "/api/dogs/search", strings.NewReader(`["a","b"]`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(gotIDs) != 2 || gotIDs[0] != "a" || gotIDs[1] != "b" {
		t.Errorf("expected ids [a b] upstream, got %v", gotIDs)
	}
	var dogs []domain.Dog
	_ = json.NewDecoder(resp.Body).Decode(&dogs)
	if len(dogs) != 1 || dogs[0].Name != "Rex" {
		t.Errorf("unexpected dogs: %+v", dogs)
	}
}

func TestProxyDogs_ForwardsAnyArrayVerbatim(t *testing.T) {
	var gotBody string
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Bad Request"))
	}))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("POST", "/api/dogs/search", strings.NewReader(`[1, 2]`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if gotBody != `[1, 2]` {
		t.Errorf("expected body forwarded unchanged, got %q", gotBody)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected upstream status 400 passed through, got %d", resp.StatusCode)
	}
	if body := string(readBody(t, resp.Body)); body != "Bad Request" {
		t.Errorf("expected upstream body, got %q", body)
	}
}

func TestProxyDogs_RedirectsWithoutCookie(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/dogs/search", strings.NewReader(`["a"]`)), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", resp.StatusCode)
	}
}

// ---- Orchestrated search: POST /api/search ----

func TestSearch_SortsByBreedAndLinksNextPage(t *testing.T) {
	dogs := []domain.Dog{
		{ID: "1", Breed: "Pug"},
		{ID: "2", Breed: "akita"},
		{ID: "3", Breed: "Beagle"},
	}
	client := newUpstream(t, dogAPI(t, dogs, "/dogs/search?size=3&from=3&ageMin=2"))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"breeds":["Pug"],"minAge":2}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var state domain.SearchState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Status != domain.StatusSuccess || state.Loading {
		t.Fatalf("unexpected state: %+v", state)
	}
	var got []string
	for _, d := range state.Dogs {
		got = append(got, d.Breed)
	}
	if strings.Join(got, ",") != "akita,Beagle,Pug" {
		t.Errorf("expected breed order akita,Beagle,Pug, got %v", got)
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, "/api/dogs/search?") || !strings.Contains(link, "minAge=2") {
		t.Errorf("unexpected Link header %q", link)
	}
}

func TestSearch_ReverseOrder(t *testing.T) {
	dogs := []domain.Dog{{ID: "1", Breed: "Akita"}, {ID: "2", Breed: "Pug"}}
	client := newUpstream(t, dogAPI(t, dogs, ""))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"reverse":true}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	var state domain.SearchState
	_ = json.NewDecoder(resp.Body).Decode(&state)
	if len(state.Dogs) != 2 || state.Dogs[0].Breed != "Pug" {
		t.Errorf("expected descending breed order, got %+v", state.Dogs)
	}
}

func TestSearch_UnauthorizedRedirects(t *testing.T) {
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("POST", "/api/search", strings.NewReader(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestSearch_UpstreamFailureReportsPhaseMessage(t *testing.T) {
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dogs/search" {
			_, _ = w.Write([]byte(`{"resultIds":["a"],"total":1}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("database exploded"))
	}))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("POST", "/api/search", strings.NewReader(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	var state domain.SearchState
	_ = json.NewDecoder(resp.Body).Decode(&state)
	if state.Status != domain.StatusFailed || state.Error != usecases.ErrMsgFetchDogDetails {
		t.Errorf("expected hydration failure message, got %+v", state)
	}
	if len(state.Dogs) != 0 {
		t.Errorf("expected no dogs, got %d", len(state.Dogs))
	}
}

func TestSearch_InvalidAgeRange(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	req := withCookie(httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"minAge":9,"maxAge":1}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var apiErr struct {
		Code string `json:"code"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request, got %s", apiErr.Code)
	}
}

func TestSearchState_ReturnsLastResult(t *testing.T) {
	client := newUpstream(t, dogAPI(t, []domain.Dog{{ID: "1", Breed: "Pug"}}, ""))
	app := setupApp(makeDeps(t, client))

	req := withCookie(httptest.NewRequest("POST", "/api/search", strings.NewReader(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	if _, err := app.Test(req, -1); err != nil {
		t.Fatal(err)
	}

	resp, _ := app.Test(withCookie(httptest.NewRequest("GET", "/api/search", nil)), -1)
	var state domain.SearchState
	_ = json.NewDecoder(resp.Body).Decode(&state)
	if state.Seq != 1 || len(state.Dogs) != 1 {
		t.Errorf("expected the session's last search, got %+v", state)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("expected no-store, got %q", cc)
	}
}

// ---- Breeds ----

func TestBreeds_Cached(t *testing.T) {
	var calls int32
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`["Akita","Beagle"]`))
	}))
	app := setupApp(makeDeps(t, client))

	for i := 0; i < 3; i++ {
		resp, _ := app.Test(withCookie(httptest.NewRequest("GET", "/api/breeds", nil)), -1)
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}

	_, _ = app.Test(withCookie(httptest.NewRequest("GET", "/api/breeds?refresh=true", nil)), -1)
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected refresh to refetch, got %d calls", n)
	}
}

// ---- Bounding box ----

func TestBoundingBox(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/geo/bbox?lat=0&lon=0&radius=69.16", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var box domain.Bounds
	_ = json.NewDecoder(resp.Body).Decode(&box)
	if box.MinLat > -0.99 || box.MinLat < -1.01 || box.MaxLat < 0.99 || box.MaxLat > 1.01 {
		t.Errorf("expected roughly ±1°, got %+v", box)
	}
}

func TestBoundingBox_BadInput(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	for _, q := range []string{"", "?lat=90&lon=0&radius=5", "?lat=10&lon=0&radius=0", "?lat=abc&lon=0&radius=5"} {
		resp, _ := app.Test(httptest.NewRequest("GET", "/api/geo/bbox"+q, nil), -1)
		if resp.StatusCode != 400 {
			t.Errorf("%q: expected 400, got %d", q, resp.StatusCode)
		}
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_UpstreamReachable(t *testing.T) {
	client := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	app := setupApp(makeDeps(t, client))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_NoUpstream(t *testing.T) {
	deps := makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second))
	deps.Upstream = nil
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func TestGraphQL_BoundingBox(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	body := `{"query":"{ boundingBox(lat: 0, lon: 0, radius: 69.16) { min_lat max_lat } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Data struct {
			BoundingBox struct {
				MinLat float64 `json:"min_lat"`
				MaxLat float64 `json:"max_lat"`
			} `json:"boundingBox"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", out.Errors)
	}
	if out.Data.BoundingBox.MaxLat < 0.99 || out.Data.BoundingBox.MaxLat > 1.01 {
		t.Errorf("unexpected box: %+v", out.Data.BoundingBox)
	}
}

func TestGraphQL_SearchMutation(t *testing.T) {
	client := newUpstream(t, dogAPI(t, []domain.Dog{{ID: "1", Breed: "Pug"}, {ID: "2", Breed: "Akita"}}, ""))
	app := setupApp(makeDeps(t, client))

	body := `{"query":"mutation { search(breeds: [\"Pug\", \"Akita\"]) { status dogs { id breed } } }"}`
	req := withCookie(httptest.NewRequest("POST", "/graphql", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	var out struct {
		Data struct {
			Search struct {
				Status string       `json:"status"`
				Dogs   []domain.Dog `json:"dogs"`
			} `json:"search"`
		} `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.Data.Search.Status != "success" {
		t.Fatalf("expected success, got %q", out.Data.Search.Status)
	}
	if len(out.Data.Search.Dogs) != 2 || out.Data.Search.Dogs[0].Breed != "Akita" {
		t.Errorf("expected breed-sorted dogs, got %+v", out.Data.Search.Dogs)
	}
}

// ---- Headers & middleware ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps(t, upstream.New("http://127.0.0.1:1", time.Second)))

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/geo/bbox?lat=40&lon=-74&radius=10", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag")
	}

	req := httptest.NewRequest("GET", "/api/geo/bbox?lat=40&lon=-74&radius=10", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// TestAccessLogMiddleware verifies structured access logging is emitted.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp.Body); !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", string(body))
	}
}
