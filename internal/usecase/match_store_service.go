package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/platform/logging"
)

// GoalObserver receives the previous and freshly merged live state after
// every successful soft update. Implemented by NotifierService.
type GoalObserver interface {
	CheckForGoals(newLive map[string][]*match.Match, prev StoreSnapshot)
}

// StoreSnapshot is an immutable view of the store's collections. Maps and
// slices are copies; the match pointers are shared and must be treated as
// read-only.
type StoreSnapshot struct {
	Live map[string][]*match.Match
	Days map[string]map[string][]*match.Match
}

// CategoryCounts summarizes which tabs would be non-empty for a day.
type CategoryCounts struct {
	Live      int
	Finished  int
	Scheduled int
}

// MatchStoreService owns the canonical match collections and reconciles
// them against upstream snapshots.
//
// Day slots are keyed by the requested UTC calendar date; the status filter
// corrects for local-day boundaries at read time. A match lives either in
// the live collection or in exactly one day slot, never both: day slots
// hold non-live matches only and the live collection is replaced wholesale
// by live fetches.
//
// Every write carries a sequence number taken when its request was issued.
// A response that arrives after a later-issued write has already been
// applied to the same slot is discarded, so a slow poll can never overwrite
// fresher state.
type MatchStoreService struct {
	provider ScoreProvider
	observer GoalObserver
	loc      *time.Location
	logger   *logging.Logger
	now      func() time.Time

	mu          sync.RWMutex
	days        map[string]map[string][]*match.Match
	live        map[string][]*match.Match
	lastDaySeq  map[string]uint64
	lastLiveSeq uint64

	seq      atomic.Uint64
	inFlight atomic.Bool
}

func NewMatchStoreService(provider ScoreProvider, observer GoalObserver, loc *time.Location, logger *logging.Logger) *MatchStoreService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchStoreService{
		provider:   provider,
		observer:   observer,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
		days:       make(map[string]map[string][]*match.Match),
		live:       make(map[string][]*match.Match),
		lastDaySeq: make(map[string]uint64),
	}
}

// Location returns the viewer time zone the store classifies against.
func (s *MatchStoreService) Location() *time.Location {
	return s.loc
}

// FetchFull destructively refreshes the slot for day's UTC calendar date.
// Other day slots and the live collection are untouched. On fetch failure
// the slot degrades to explicitly empty and the error is returned for
// surfacing.
func (s *MatchStoreService) FetchFull(ctx context.Context, day time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStoreService.FetchFull")
	defer span.End()

	dateKey := day.UTC().Format(match.DayKeyLayout)
	seq := s.seq.Add(1)

	raw, err := s.provider.FetchMatches(ctx, dateKey)
	if err != nil {
		s.mu.Lock()
		if seq > s.lastDaySeq[dateKey] {
			s.days[dateKey] = make(map[string][]*match.Match)
			s.lastDaySeq[dateKey] = seq
		}
		s.mu.Unlock()
		return fmt.Errorf("fetch matches for %s: %w", dateKey, err)
	}

	classified, dropped := match.Classify(raw, s.loc)
	s.logDropped(ctx, dropped)
	grouped := flattenDayBuckets(classified)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.lastDaySeq[dateKey] {
		s.logger.DebugContext(ctx, "discard stale day snapshot", "date", dateKey, "seq", seq)
		return nil
	}
	s.days[dateKey] = grouped
	s.lastDaySeq[dateKey] = seq
	return nil
}

// FetchLiveFull destructively replaces the live collection. A failed or
// empty fetch leaves an explicit "no live matches" state rather than stale
// data.
func (s *MatchStoreService) FetchLiveFull(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStoreService.FetchLiveFull")
	defer span.End()

	seq := s.seq.Add(1)
	raw, err := s.provider.FetchLiveMatches(ctx)
	if err != nil {
		s.mu.Lock()
		if seq > s.lastLiveSeq {
			s.live = make(map[string][]*match.Match)
			s.lastLiveSeq = seq
		}
		s.mu.Unlock()
		return fmt.Errorf("fetch live matches: %w", err)
	}

	classified, dropped := match.Classify(raw, s.loc)
	s.logDropped(ctx, dropped)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.lastLiveSeq {
		s.logger.DebugContext(ctx, "discard stale live snapshot", "seq", seq)
		return nil
	}
	s.live = classified.Live
	s.lastLiveSeq = seq
	return nil
}

// SoftUpdate incrementally reconciles the live collection and day's slot
// against fresh snapshots. The two fetches run concurrently and fail
// independently; a failure in one never discards the other's result.
// Unchanged matches keep their existing object, changed ones are merged
// with LocalDate and UserVote pinned from the old object unless the payload
// supplies them. Leagues absent from a snapshot are left untouched; removal
// happens only through the full-fetch paths. The merged result is built
// completely before being committed, so an error mid-merge leaves prior
// state exactly as it was.
func (s *MatchStoreService) SoftUpdate(ctx context.Context, day time.Time) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrUpdateInFlight
	}
	defer s.inFlight.Store(false)

	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStoreService.SoftUpdate")
	defer span.End()

	dateKey := day.UTC().Format(match.DayKeyLayout)
	liveSeq := s.seq.Add(1)
	daySeq := s.seq.Add(1)

	var (
		liveRaw, dayRaw []match.Match
		liveErr, dayErr error
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		liveRaw, liveErr = s.provider.FetchLiveMatches(ctx)
	})
	wg.Go(func() {
		dayRaw, dayErr = s.provider.FetchMatches(ctx, dateKey)
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.ErrorContext(ctx, "soft update fetch panicked, state retained", "panic", recovered.Value)
		return fmt.Errorf("soft update fetch panicked: %v", recovered.Value)
	}

	var liveClassified, dayClassified match.Classified
	if liveErr == nil {
		var dropped []match.Dropped
		liveClassified, dropped = match.Classify(liveRaw, s.loc)
		s.logDropped(ctx, dropped)
	} else {
		s.logger.WarnContext(ctx, "soft update live fetch failed", "error", liveErr)
	}
	if dayErr == nil {
		var dropped []match.Dropped
		dayClassified, dropped = match.Classify(dayRaw, s.loc)
		s.logDropped(ctx, dropped)
	} else {
		s.logger.WarnContext(ctx, "soft update day fetch failed", "date", dateKey, "error", dayErr)
	}

	// Merge and commit under one lock so a concurrent vote cannot land
	// between building the merged maps and installing them.
	s.mu.Lock()
	prev := s.snapshotLocked()
	liveApplied := false
	if liveErr == nil {
		if liveSeq > s.lastLiveSeq {
			s.live = s.mergeBuckets(ctx, s.live, liveClassified.Live)
			s.lastLiveSeq = liveSeq
			liveApplied = true
		} else {
			s.logger.DebugContext(ctx, "discard stale live merge", "seq", liveSeq)
		}
	}
	if dayErr == nil {
		if daySeq > s.lastDaySeq[dateKey] {
			s.days[dateKey] = s.mergeBuckets(ctx, s.days[dateKey], flattenDayBuckets(dayClassified))
			s.lastDaySeq[dateKey] = daySeq
		} else {
			s.logger.DebugContext(ctx, "discard stale day merge", "date", dateKey, "seq", daySeq)
		}
	}
	newLive := copyBucket(s.live)
	s.mu.Unlock()

	if liveApplied && s.observer != nil {
		s.observer.CheckForGoals(newLive, prev)
	}

	if liveErr != nil && dayErr != nil {
		return fmt.Errorf("soft update: %w", errors.Join(liveErr, dayErr))
	}
	return nil
}

// ApplyVote merges a confirmed vote result into the match wherever it
// appears, across both the live collection and every day slot. The match
// object is replaced (new tally, recomputed fan prediction, viewer's vote)
// with its cached local date retained.
func (s *MatchStoreService) ApplyVote(matchID int64, votes match.VoteCounts, userVote match.VoteChoice) {
	apply := func(m *match.Match) *match.Match {
		updated := *m
		updated.Votes = votes
		updated.UserVote = userVote
		updated.FanPrediction = match.FanPrediction(votes)
		return &updated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for league, matches := range s.live {
		for i, m := range matches {
			if m.ID == matchID {
				next := append([]*match.Match(nil), matches...)
				next[i] = apply(m)
				s.live[league] = next
			}
		}
	}
	for day, leagues := range s.days {
		for league, matches := range leagues {
			for i, m := range matches {
				if m.ID == matchID {
					next := append([]*match.Match(nil), matches...)
					next[i] = apply(m)
					s.days[day][league] = next
				}
			}
		}
	}
}

// LiveSnapshot returns a copy of the live collection.
func (s *MatchStoreService) LiveSnapshot() map[string][]*match.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyBucket(s.live)
}

// DaySnapshot returns a copy of the slot for day's UTC calendar date.
func (s *MatchStoreService) DaySnapshot(day time.Time) map[string][]*match.Match {
	dateKey := day.UTC().Format(match.DayKeyLayout)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyBucket(s.days[dateKey])
}

// Snapshot returns a copy of everything the store holds.
func (s *MatchStoreService) Snapshot() StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Counts reports how many live, finished and scheduled matches exist for
// the day, feeding the tab selection policy. Live matches are global, not
// day-scoped, matching how the live tab behaves.
func (s *MatchStoreService) Counts(day Day) CategoryCounts {
	refDay := day.Date(s.now())
	bucket := s.DaySnapshot(refDay)

	var counts CategoryCounts
	s.mu.RLock()
	for _, matches := range s.live {
		counts.Live += len(matches)
	}
	s.mu.RUnlock()

	for _, matches := range match.FilterByStatus(bucket, []match.Status{match.StatusFinished}, s.loc, refDay.In(s.loc)) {
		counts.Finished += len(matches)
	}
	for _, matches := range match.FilterByStatus(bucket, []match.Status{match.StatusScheduled, match.StatusTimed}, s.loc, refDay.In(s.loc)) {
		counts.Scheduled += len(matches)
	}
	return counts
}

func (s *MatchStoreService) snapshotLocked() StoreSnapshot {
	snap := StoreSnapshot{
		Live: copyBucket(s.live),
		Days: make(map[string]map[string][]*match.Match, len(s.days)),
	}
	for day, leagues := range s.days {
		snap.Days[day] = copyBucket(leagues)
	}
	return snap
}

// mergeBuckets reconciles one incoming bucket against the existing one.
// Called with the write lock held; it only reads old and returns a fresh map.
func (s *MatchStoreService) mergeBuckets(ctx context.Context, old, incoming map[string][]*match.Match) map[string][]*match.Match {
	out := make(map[string][]*match.Match, len(old)+len(incoming))
	for league, matches := range old {
		out[league] = matches
	}

	for league, fresh := range incoming {
		existing := make(map[int64]*match.Match, len(old[league]))
		for _, m := range old[league] {
			existing[m.ID] = m
		}

		merged := make([]*match.Match, 0, len(fresh))
		for _, in := range fresh {
			prev, ok := existing[in.ID]
			if !ok {
				merged = append(merged, in)
				continue
			}
			if !matchChanged(prev, in) {
				merged = append(merged, prev)
				continue
			}
			s.logger.DebugContext(ctx, "match changed",
				"match_id", in.ID,
				"fields", changedFields(prev, in),
			)
			merged = append(merged, mergeMatch(prev, in))
		}
		out[league] = merged
	}
	return out
}

// mergeMatch applies the new-wins rule with the two sticky exceptions:
// the cached local date and the viewer's own vote survive unless the
// payload explicitly carries replacements.
func mergeMatch(old, incoming *match.Match) *match.Match {
	merged := *incoming
	if merged.LocalDate == nil {
		merged.LocalDate = old.LocalDate
	}
	if merged.UserVote == "" {
		merged.UserVote = old.UserVote
	}
	return &merged
}

// flattenDayBuckets collapses the classifier's per-local-day buckets into a
// single league map for the requested UTC date slot. A UTC-day fetch can
// straddle two local days; the TIMED day-bound rule in the status filter
// resolves that at read time.
func flattenDayBuckets(c match.Classified) map[string][]*match.Match {
	out := make(map[string][]*match.Match)
	for _, leagues := range c.ByDay {
		for league, matches := range leagues {
			out[league] = append(out[league], matches...)
		}
	}
	return out
}

func copyBucket(src map[string][]*match.Match) map[string][]*match.Match {
	out := make(map[string][]*match.Match, len(src))
	for league, matches := range src {
		out[league] = append([]*match.Match(nil), matches...)
	}
	return out
}

func (s *MatchStoreService) logDropped(ctx context.Context, dropped []match.Dropped) {
	for _, d := range dropped {
		s.logger.WarnContext(ctx, "dropped unclassifiable match", "match_id", d.MatchID, "reason", d.Reason)
	}
}
