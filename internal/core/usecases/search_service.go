package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/core/ports"
	"github.com/samirrijal/pawsearch/internal/pkg/metrics"
)

// Fixed, phase-specific messages shown to the user. Upstream error bodies are
// never surfaced.
const (
	ErrMsgFetchDogs       = "Failed to fetch dogs"
	ErrMsgFetchDogDetails = "Failed to fetch dogs by IDs"
	ErrMsgResolveLocation = "Failed to resolve search location"
	ErrMsgInvalidFilter   = "Invalid search filter"
)

// SearchService runs the two-phase dog search (ID lookup, then hydration)
// and owns the resulting {dogs, loading, error} state for one session.
//
// Each Search call takes the next sequence number. A response is applied only
// while its sequence number is still the latest issued; anything older is
// discarded, so only the most recent search is ever displayed.
type SearchService struct {
	dogs      ports.DogAPI
	locations *LocationService
	breeds    *BreedCatalog
	publisher ports.EventPublisher
	session   string

	mu    sync.Mutex
	seq   uint64
	state domain.SearchState
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithLocations enables the zip + radius pre-filter.
func WithLocations(l *LocationService) SearchOption {
	return func(s *SearchService) { s.locations = l }
}

// WithBreedCatalog invalidates the catalog when the upstream rejects the session.
func WithBreedCatalog(b *BreedCatalog) SearchOption {
	return func(s *SearchService) { s.breeds = b }
}

// WithPublisher publishes a SearchEvent for every applied terminal state.
func WithPublisher(p ports.EventPublisher) SearchOption {
	return func(s *SearchService) { s.publisher = p }
}

// WithSession labels published events with a session key.
func WithSession(session string) SearchOption {
	return func(s *SearchService) { s.session = session }
}

// NewSearchService creates a new SearchService.
func NewSearchService(dogs ports.DogAPI, opts ...SearchOption) *SearchService {
	s := &SearchService{
		dogs:  dogs,
		state: domain.SearchState{Status: domain.StatusIdle},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Current returns a copy of the latest applied state.
func (s *SearchService) Current() domain.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

// Search runs a search to a terminal state and returns it. A 401 from any
// phase fires nav exactly once and leaves Error unset. If a newer search was
// submitted meanwhile, the result is not applied and comes back with Stale set.
func (s *SearchService) Search(ctx context.Context, creds domain.Credentials, filter domain.SearchFilter, nav ports.Navigator) domain.SearchState {
	start := time.Now()
	seq := s.begin()
	log := slog.Default().With("seq", seq, "session", s.session)

	if err := filter.Validate(); err != nil {
		log.WarnContext(ctx, "rejecting search filter", "error", err)
		return s.finish(ctx, seq, start, filter, failed(ErrMsgInvalidFilter+": "+err.Error()), nav)
	}

	if filter.Near != nil && s.locations != nil {
		zips, err := s.locations.ZipCodesNear(ctx, creds, filter.Near.ZipCode, filter.Near.RadiusMiles)
		if err != nil {
			return s.fail(ctx, seq, start, filter, "resolve_location", ErrMsgResolveLocation, err, nav)
		}
		filter.ZipCodes = narrowZipCodes(filter.ZipCodes, zips)
		filter.Near = nil
		if len(filter.ZipCodes) == 0 {
			return s.finish(ctx, seq, start, filter, succeeded(nil, 0), nav)
		}
	}

	result, err := s.dogs.SearchDogs(ctx, creds, filter)
	if err != nil {
		return s.fail(ctx, seq, start, filter, "search_ids", ErrMsgFetchDogs, err, nav)
	}
	if len(result.ResultIDs) == 0 {
		st := succeeded(nil, result.Total)
		st.Prev = result.Prev
		return s.finish(ctx, seq, start, filter, st, nav)
	}

	if !s.advance(seq, domain.StatusFetchingDetails) {
		metrics.StaleResponsesDiscarded.Inc()
		log.DebugContext(ctx, "search superseded before hydration")
		return domain.SearchState{Seq: seq, Status: domain.StatusFetchingDetails, Stale: true}
	}

	dogs, err := s.dogs.FetchDogs(ctx, creds, result.ResultIDs)
	if err != nil {
		return s.fail(ctx, seq, start, filter, "hydrate", ErrMsgFetchDogDetails, err, nav)
	}

	log.DebugContext(ctx, "search hydrated", "ids", len(result.ResultIDs), "dogs", len(dogs))
	st := succeeded(dogs, result.Total)
	st.Next, st.Prev = result.Next, result.Prev
	return s.finish(ctx, seq, start, filter, st, nav)
}

// begin issues a new sequence number and moves the state to FetchingIDs.
// Results of the previous search are dropped, not merged.
func (s *SearchService) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state = domain.SearchState{
		Seq:     s.seq,
		Status:  domain.StatusFetchingIDs,
		Loading: true,
	}
	return s.seq
}

// advance moves a still-current search to the given in-flight status.
func (s *SearchService) advance(seq uint64, status domain.SearchStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.state.Status = status
	return true
}

func (s *SearchService) fail(ctx context.Context, seq uint64, start time.Time, filter domain.SearchFilter, phase, msg string, err error, nav ports.Navigator) domain.SearchState {
	if errors.Is(err, domain.ErrUnauthorized) {
		if s.breeds != nil {
			s.breeds.Invalidate(ctx)
		}
		slog.InfoContext(ctx, "upstream rejected session", "phase", phase, "seq", seq)
		return s.finish(ctx, seq, start, filter, domain.SearchState{Status: domain.StatusUnauthorized}, nav)
	}

	slog.ErrorContext(ctx, "search failed", "phase", phase, "seq", seq, "error", err)
	return s.finish(ctx, seq, start, filter, failed(msg), nav)
}

// finish applies a terminal state if seq is still the latest search.
func (s *SearchService) finish(ctx context.Context, seq uint64, start time.Time, filter domain.SearchFilter, st domain.SearchState, nav ports.Navigator) domain.SearchState {
	st.Seq = seq
	st.Loading = false

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		metrics.StaleResponsesDiscarded.Inc()
		st.Stale = true
		return st
	}
	s.state = st
	out := snapshot(st)
	s.mu.Unlock()

	metrics.SearchesTotal.WithLabelValues(string(st.Status)).Inc()

	if st.Status == domain.StatusUnauthorized && nav != nil {
		nav.RedirectToLogin(ctx)
	}
	s.publish(ctx, seq, start, filter, st)
	return out
}

func (s *SearchService) publish(ctx context.Context, seq uint64, start time.Time, filter domain.SearchFilter, st domain.SearchState) {
	if s.publisher == nil {
		return
	}
	event := &domain.SearchEvent{
		ID:         uuid.NewString(),
		Session:    s.session,
		Seq:        seq,
		Status:     st.Status,
		Breeds:     filter.Breeds,
		Total:      st.Total,
		Dogs:       len(st.Dogs),
		Error:      st.Error,
		DurationMs: time.Since(start).Milliseconds(),
		Time:       time.Now().UTC(),
	}
	if err := s.publisher.PublishSearchEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish search event", "error", err, "seq", seq)
	}
}

func succeeded(dogs []domain.Dog, total int) domain.SearchState {
	if dogs == nil {
		dogs = []domain.Dog{}
	}
	return domain.SearchState{Status: domain.StatusSuccess, Dogs: dogs, Total: total}
}

func failed(msg string) domain.SearchState {
	return domain.SearchState{Status: domain.StatusFailed, Dogs: []domain.Dog{}, Error: msg}
}

func snapshot(st domain.SearchState) domain.SearchState {
	if st.Dogs != nil {
		st.Dogs = append([]domain.Dog(nil), st.Dogs...)
	}
	return st
}

// narrowZipCodes intersects explicitly requested zip codes with the ones
// found near the radius center. With no explicit list, the nearby set is used.
func narrowZipCodes(requested, nearby []string) []string {
	if len(requested) == 0 {
		return nearby
	}
	in := make(map[string]struct{}, len(nearby))
	for _, z := range nearby {
		in[z] = struct{}{}
	}
	var out []string
	for _, z := range requested {
		if _, ok := in[z]; ok {
			out = append(out, z)
		}
	}
	return out
}
