package swipes

import (
	"context"
	"errors"
	"testing"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

const (
	userA      = int64(1)
	userB      = int64(2)
	roomOfA    = int64(20)
	roomOfB    = int64(10)
	propertyID = int64(30)
)

func seedPair(f *fixture, countA, countB int) {
	f.store.addUser(userA, false, countA)
	f.store.addUser(userB, false, countB)
	f.store.addRoommate(roomOfA, userA)
	f.store.addRoommate(roomOfB, userB)
	f.store.addProperty(propertyID, userB)
}

func TestOneSidedLikeRecordsSwipeWithoutMatch(t *testing.T) {
	f := newFixture()
	seedPair(f, 9, 0)

	res, err := f.svc.Swipe(context.Background(), userA, "roommate", roomOfB, "like")
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if res.Matched || res.MatchCreated || res.Match != nil {
		t.Fatalf("expected no match on one-sided like, got %+v", res)
	}
	if res.Swipe.ID == 0 || res.Swipe.TargetType != enums.TargetTypeRoommate || res.Swipe.TargetID != roomOfB {
		t.Fatalf("unexpected swipe: %+v", res.Swipe)
	}
	if got := f.store.swipeCount(userA); got != 10 {
		t.Fatalf("expected swipe count 10, got %d", got)
	}
	if res.Quota.Used != 10 || res.Quota.Remaining != 0 || res.Quota.Unlimited {
		t.Fatalf("unexpected quota snapshot: %+v", res.Quota)
	}
	if len(f.store.matches) != 0 {
		t.Fatalf("expected no match rows, got %d", len(f.store.matches))
	}
	if f.tracker.count(EventSwipeRecorded) != 1 {
		t.Fatalf("expected swipe_recorded event, got %v", f.tracker.names)
	}
}

func TestReciprocalLikeCreatesMatch(t *testing.T) {
	f := newFixture()
	seedPair(f, 9, 0)
	ctx := context.Background()

	if _, err := f.svc.Swipe(ctx, userA, "roommate", roomOfB, "like"); err != nil {
		t.Fatalf("swipe A: %v", err)
	}
	res, err := f.svc.Swipe(ctx, userB, "roommate", roomOfA, "like")
	if err != nil {
		t.Fatalf("swipe B: %v", err)
	}
	if !res.Matched || !res.MatchCreated || res.Match == nil {
		t.Fatalf("expected new match, got %+v", res)
	}
	if !res.Match.HasUser(userA) || !res.Match.HasUser(userB) {
		t.Fatalf("match does not link both users: %+v", res.Match)
	}
	if res.Match.RelatedType != enums.TargetTypeRoommate || res.Match.RelatedID == nil || *res.Match.RelatedID != roomOfA {
		t.Fatalf("unexpected match provenance: %+v", res.Match)
	}
	if len(f.store.matches) != 1 {
		t.Fatalf("expected one match row, got %d", len(f.store.matches))
	}
	if len(f.notifier.matches) != 1 || f.notifier.matches[0].ID != res.Match.ID {
		t.Fatalf("expected notification for match %d, got %+v", res.Match.ID, f.notifier.matches)
	}
	if f.tracker.count(EventMatchCreated) != 1 {
		t.Fatalf("expected match_created event, got %v", f.tracker.names)
	}
	if len(f.store.lockedPairs) != 2 {
		t.Fatalf("expected pair lock per reciprocity check, got %d", len(f.store.lockedPairs))
	}
}

func TestQuotaExceededRejectsWithoutWriting(t *testing.T) {
	f := newFixture()
	seedPair(f, 10, 0)

	_, err := f.svc.Swipe(context.Background(), userA, "roommate", roomOfB, "like")
	qe, ok := IsQuotaExceeded(err)
	if !ok {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if qe.Used != 10 || qe.Limit != 10 {
		t.Fatalf("unexpected quota error payload: %+v", qe)
	}
	if got := f.store.swipeCount(userA); got != 10 {
		t.Fatalf("expected swipe count to stay 10, got %d", got)
	}
	if len(f.store.swipes) != 0 {
		t.Fatalf("expected no swipe rows, got %d", len(f.store.swipes))
	}
	if f.tracker.count(EventSwipeQuotaExceeded) != 1 || f.tracker.count(EventSwipeRecorded) != 0 {
		t.Fatalf("unexpected events: %v", f.tracker.names)
	}
}

func TestQuotaExceededForAnyCountAtOrAboveLimit(t *testing.T) {
	for _, count := range []int{10, 11, 50} {
		f := newFixture()
		seedPair(f, count, 0)

		_, err := f.svc.Swipe(context.Background(), userA, "property", propertyID, "skip")
		if _, ok := IsQuotaExceeded(err); !ok {
			t.Fatalf("count=%d: expected QuotaExceededError, got %v", count, err)
		}
		if got := f.store.swipeCount(userA); got != count {
			t.Fatalf("count=%d: counter changed to %d", count, got)
		}
	}
}

func TestPremiumNeverHitsQuota(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	f.store.addUser(userA, true, 500)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := f.svc.Swipe(ctx, userA, "property", propertyID, "like")
		if err != nil {
			t.Fatalf("premium swipe #%d: %v", i+1, err)
		}
		if !res.Quota.Unlimited {
			t.Fatalf("expected unlimited quota, got %+v", res.Quota)
		}
	}
	if got := f.store.swipeCount(userA); got != 500 {
		t.Fatalf("premium counter must not change, got %d", got)
	}
	if f.limiter.calls != 3 {
		t.Fatalf("expected burst limiter on every premium swipe, got %d calls", f.limiter.calls)
	}
}

func TestPremiumBurstLimited(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	f.store.addUser(userA, true, 0)
	f.limiter.allowed = false
	f.limiter.retryAfter = 7

	_, err := f.svc.Swipe(context.Background(), userA, "roommate", roomOfB, "like")
	tf, ok := IsTooFast(err)
	if !ok {
		t.Fatalf("expected TooFastError, got %v", err)
	}
	if tf.RetryAfter() != 7 {
		t.Fatalf("expected retry after 7, got %d", tf.RetryAfter())
	}
	if _, isQuota := IsQuotaExceeded(err); isQuota {
		t.Fatalf("burst limit must not be reported as quota")
	}
	if len(f.store.swipes) != 0 {
		t.Fatalf("expected no swipe rows, got %d", len(f.store.swipes))
	}
}

func TestPremiumBurstDenialNeverOpensTx(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	f.store.addUser(userA, true, 0)
	f.limiter.allowed = false

	if _, err := f.svc.Swipe(context.Background(), userA, "property", propertyID, "like"); err == nil {
		t.Fatal("expected burst denial")
	}
	if f.store.txCalls != 0 {
		t.Fatalf("expected no transaction for a denied swipe, got %d", f.store.txCalls)
	}

	f.limiter.allowed = true
	if _, err := f.svc.Swipe(context.Background(), userA, "property", propertyID, "like"); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if f.store.txCalls != 1 {
		t.Fatalf("expected one transaction, got %d", f.store.txCalls)
	}
}

func TestPremiumLimiterFailure(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	f.store.addUser(userA, true, 0)
	f.limiter.err = errStoreDown

	_, err := f.svc.Swipe(context.Background(), userA, "roommate", roomOfB, "like")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped limiter error, got %v", err)
	}
	if f.store.txCalls != 0 || len(f.store.swipes) != 0 {
		t.Fatalf("expected nothing written, tx=%d swipes=%d", f.store.txCalls, len(f.store.swipes))
	}
}

func TestFreeTierSkipsBurstLimiter(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	f.limiter.allowed = false

	if _, err := f.svc.Swipe(context.Background(), userA, "roommate", roomOfB, "skip"); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if f.limiter.calls != 0 {
		t.Fatalf("expected limiter untouched for free tier, got %d calls", f.limiter.calls)
	}
}

func TestDuplicateLikeKeepsSingleMatch(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	ctx := context.Background()

	if _, err := f.svc.Swipe(ctx, userB, "roommate", roomOfA, "like"); err != nil {
		t.Fatalf("swipe B: %v", err)
	}

	first, err := f.svc.Swipe(ctx, userA, "roommate", roomOfB, "like")
	if err != nil {
		t.Fatalf("first swipe A: %v", err)
	}
	second, err := f.svc.Swipe(ctx, userA, "roommate", roomOfB, "like")
	if err != nil {
		t.Fatalf("second swipe A: %v", err)
	}

	if !first.MatchCreated || !first.Matched {
		t.Fatalf("expected first like to create match, got %+v", first)
	}
	if second.MatchCreated || !second.Matched {
		t.Fatalf("expected second like to report existing match, got %+v", second)
	}
	if first.Match.ID != second.Match.ID {
		t.Fatalf("expected same match id, got %d and %d", first.Match.ID, second.Match.ID)
	}
	if len(f.store.swipes) != 3 {
		t.Fatalf("expected 3 swipe rows, got %d", len(f.store.swipes))
	}
	if len(f.store.matches) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(f.store.matches))
	}
	if f.store.reciprocityHits != 3 {
		t.Fatalf("expected reciprocity re-evaluated on every like, got %d", f.store.reciprocityHits)
	}
	if len(f.notifier.matches) != 1 {
		t.Fatalf("expected a single notification, got %d", len(f.notifier.matches))
	}
}

func TestMatchingOrderIndependent(t *testing.T) {
	orders := [][2]int64{{userA, userB}, {userB, userA}}
	for _, order := range orders {
		f := newFixture()
		seedPair(f, 0, 0)
		ctx := context.Background()
		rooms := map[int64]int64{userA: roomOfB, userB: roomOfA}

		for _, actor := range order {
			if _, err := f.svc.Swipe(ctx, actor, "roommate", rooms[actor], "like"); err != nil {
				t.Fatalf("order %v: swipe %d: %v", order, actor, err)
			}
		}
		if len(f.store.matches) != 1 {
			t.Fatalf("order %v: expected one match, got %d", order, len(f.store.matches))
		}
	}
}

func TestSkipNeverChecksReciprocity(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	ctx := context.Background()

	if _, err := f.svc.Swipe(ctx, userB, "roommate", roomOfA, "like"); err != nil {
		t.Fatalf("swipe B: %v", err)
	}
	hits := f.store.reciprocityHits

	res, err := f.svc.Swipe(ctx, userA, "roommate", roomOfB, "skip")
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if res.Matched {
		t.Fatalf("skip must not match")
	}
	if f.store.reciprocityHits != hits {
		t.Fatalf("skip triggered reciprocity lookup")
	}
	if len(f.store.matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(f.store.matches))
	}
}

func TestPropertySwipeNeverMatches(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	f.store.addProperty(31, userA)
	ctx := context.Background()

	if _, err := f.svc.Swipe(ctx, userA, "property", propertyID, "like"); err != nil {
		t.Fatalf("swipe A: %v", err)
	}
	res, err := f.svc.Swipe(ctx, userB, "property", 31, "like")
	if err != nil {
		t.Fatalf("swipe B: %v", err)
	}
	if res.Matched || len(f.store.matches) != 0 {
		t.Fatalf("property swipes must not match")
	}
	if f.store.reciprocityHits != 0 {
		t.Fatalf("property swipe triggered reciprocity lookup")
	}
}

func TestMissingPropertyIsNotFound(t *testing.T) {
	f := newFixture()
	seedPair(f, 3, 0)

	_, err := f.svc.Swipe(context.Background(), userA, "property", 999, "like")
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if got := f.store.swipeCount(userA); got != 3 {
		t.Fatalf("counter must not change on missing target, got %d", got)
	}
}

func TestMissingRoommateStillRecordsSwipe(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)

	res, err := f.svc.Swipe(context.Background(), userA, "roommate", 404, "like")
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if res.Matched {
		t.Fatalf("expected no match for missing roommate")
	}
	if len(f.store.swipes) != 1 || f.store.swipeCount(userA) != 1 {
		t.Fatalf("expected swipe recorded and counted")
	}
	if f.tracker.count(EventReciprocitySkippedNoRoom) != 1 {
		t.Fatalf("expected reciprocity skip event, got %v", f.tracker.names)
	}
}

func TestLikeOwnRoommateProfileDoesNotMatch(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)

	res, err := f.svc.Swipe(context.Background(), userA, "roommate", roomOfA, "like")
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if res.Matched || len(f.store.lockedPairs) != 0 {
		t.Fatalf("self like must not reach reciprocity: %+v", res)
	}
}

func TestStoreFailureRollsBack(t *testing.T) {
	f := newFixture()
	seedPair(f, 4, 0)
	f.store.failSwipeCreate = errStoreDown

	_, err := f.svc.Swipe(context.Background(), userA, "roommate", roomOfB, "like")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if got := f.store.swipeCount(userA); got != 4 {
		t.Fatalf("counter increment must be rolled back, got %d", got)
	}
	if len(f.tracker.names) != 0 {
		t.Fatalf("no events expected after rollback, got %v", f.tracker.names)
	}
}

func TestUnknownActor(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)

	_, err := f.svc.Swipe(context.Background(), 99, "roommate", roomOfB, "like")
	if !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
}

func TestSwipeValidation(t *testing.T) {
	cases := []struct {
		name       string
		actor      int64
		targetType string
		targetID   int64
		action     string
		want       error
	}{
		{name: "zero actor", actor: 0, targetType: "roommate", targetID: 1, action: "like", want: ErrValidation},
		{name: "zero target", actor: userA, targetType: "roommate", targetID: 0, action: "like", want: ErrValidation},
		{name: "negative target", actor: userA, targetType: "property", targetID: -5, action: "like", want: ErrValidation},
		{name: "unknown target type", actor: userA, targetType: "house", targetID: 1, action: "like", want: ErrValidation},
		{name: "empty target type", actor: userA, targetType: "", targetID: 1, action: "like", want: ErrValidation},
		{name: "unknown action", actor: userA, targetType: "roommate", targetID: 1, action: "superlike", want: ErrUnsupportedAction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			seedPair(f, 0, 0)

			_, err := f.svc.Swipe(context.Background(), tc.actor, tc.targetType, tc.targetID, tc.action)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(f.store.swipes) != 0 {
				t.Fatalf("validation failure wrote a swipe")
			}
		})
	}
}

func TestSwipeNormalizesInput(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)

	res, err := f.svc.Swipe(context.Background(), userA, " Roommate ", roomOfB, "LIKE")
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if res.Swipe.Action != enums.SwipeActionLike || res.Swipe.TargetType != enums.TargetTypeRoommate {
		t.Fatalf("unexpected normalized swipe: %+v", res.Swipe)
	}
}

func TestNotifierFailureDoesNotFailSwipe(t *testing.T) {
	f := newFixture()
	seedPair(f, 0, 0)
	f.notifier.err = errors.New("fcm down")
	ctx := context.Background()

	if _, err := f.svc.Swipe(ctx, userA, "roommate", roomOfB, "like"); err != nil {
		t.Fatalf("swipe A: %v", err)
	}
	res, err := f.svc.Swipe(ctx, userB, "roommate", roomOfA, "like")
	if err != nil {
		t.Fatalf("swipe B: %v", err)
	}
	if !res.MatchCreated {
		t.Fatalf("expected match despite notifier failure")
	}
}

func TestCreateMatchIfAbsentRejectsSelfPair(t *testing.T) {
	f := newFixture()
	if _, _, err := f.svc.CreateMatchIfAbsent(context.Background(), nil, userA, userA, enums.TargetTypeRoommate, roomOfA); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestMissingDependencies(t *testing.T) {
	svc := NewService(Dependencies{}, Config{})
	if _, err := svc.Swipe(context.Background(), userA, "roommate", roomOfB, "like"); !errors.Is(err, ErrDependenciesNil) {
		t.Fatalf("expected ErrDependenciesNil, got %v", err)
	}
}
