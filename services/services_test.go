package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"userachievements/analytics"
	"userachievements/database/dbtest"
	"userachievements/locale"
	"userachievements/models"
	"userachievements/repository"
)

// fakeTranslator translates from a fixed table and fails for everything else
type fakeTranslator struct {
	mu      sync.Mutex
	table   map[string]string
	calls   int
	failAll bool
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll {
		return "", locale.ErrUnavailable
	}
	if out, ok := f.table[target+":"+text]; ok {
		return out, nil
	}
	return "", locale.ErrUnavailable
}

type fixture struct {
	repo       *repository.Repository
	achieve    *AchievementService
	analytics  *AnalyticsService
	translator *fakeTranslator
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:       repository.New(dbtest.New(t), 5*time.Second),
		translator: &fakeTranslator{table: map[string]string{}},
		now:        time.Date(2026, time.October, 15, 18, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.achieve = NewAchievementService(f.repo, f.translator, "en", clock, zap.NewNop())
	f.analytics = NewAnalyticsService(f.repo, time.UTC, clock, zap.NewNop())
	return f
}

func intPtr(v int) *int { return &v }

func (f *fixture) user(t *testing.T, name string, lang models.Language) *models.User {
	t.Helper()
	u, err := f.achieve.CreateUser(context.Background(), &models.CreateUserRequest{Username: name, Language: lang})
	require.NoError(t, err)
	return u
}

func (f *fixture) achievement(t *testing.T, name string, scores int) *models.Achievement {
	t.Helper()
	a, err := f.achieve.CreateAchievement(context.Background(), &models.CreateAchievementRequest{
		AchievementName: name,
		Scores:          intPtr(scores),
		Description:     name + " description",
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) grant(t *testing.T, u *models.User, a *models.Achievement) *models.UserAchievement {
	t.Helper()
	award, err := f.achieve.GrantAward(context.Background(), &models.SetAchievementRequest{UserID: u.ID, AchievementID: a.ID})
	require.NoError(t, err)
	return award
}

// grantAt inserts an award with an explicit timestamp, bypassing the clock
func (f *fixture) grantAt(t *testing.T, u *models.User, a *models.Achievement, at time.Time) {
	t.Helper()
	require.NoError(t, f.repo.GrantAward(context.Background(), &models.UserAchievement{
		UserID: u.ID, AchievementID: a.ID, AwardedAt: at.UTC(),
	}))
}

func assertServiceError(t *testing.T, err error, errType string, status int) {
	t.Helper()
	var se *ServiceError
	require.True(t, errors.As(err, &se), "expected ServiceError, got %v", err)
	assert.Equal(t, errType, se.Type)
	assert.Equal(t, status, se.GetStatusCode())
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice", models.LanguageRU)

	got, err := f.achieve.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = f.achieve.GetUser(context.Background(), u.ID+1)
	assertServiceError(t, err, TypeNotFound, 404)
}

func TestCreateUserValidatesLanguage(t *testing.T) {
	f := newFixture(t)

	_, err := f.achieve.CreateUser(context.Background(), &models.CreateUserRequest{Username: "bob", Language: "fr"})
	assertServiceError(t, err, TypeValidation, 400)
}

func TestListAchievements(t *testing.T) {
	f := newFixture(t)

	_, err := f.achieve.ListAchievements(context.Background())
	assertServiceError(t, err, TypeNotFound, 404)

	f.achievement(t, "A", 10)
	list, err := f.achieve.ListAchievements(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateAchievementRejectsNegativeScore(t *testing.T) {
	f := newFixture(t)

	_, err := f.achieve.CreateAchievement(context.Background(), &models.CreateAchievementRequest{
		AchievementName: "A", Scores: intPtr(-5),
	})
	assertServiceError(t, err, TypeValidation, 400)
}

func TestGrantAwardThenConflict(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice", models.LanguageEN)
	a := f.achievement(t, "A", 10)

	award := f.grant(t, u, a)
	assert.True(t, award.AwardedAt.Equal(f.now))

	_, err := f.achieve.GrantAward(context.Background(), &models.SetAchievementRequest{UserID: u.ID, AchievementID: a.ID})
	assertServiceError(t, err, TypeConflict, 409)
}

func TestGrantAwardUnknownReferences(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice", models.LanguageEN)
	a := f.achievement(t, "A", 10)

	_, err := f.achieve.GrantAward(context.Background(), &models.SetAchievementRequest{UserID: u.ID + 10, AchievementID: a.ID})
	assertServiceError(t, err, TypeNotFound, 404)

	_, err = f.achieve.GrantAward(context.Background(), &models.SetAchievementRequest{UserID: u.ID, AchievementID: a.ID + 10})
	assertServiceError(t, err, TypeNotFound, 404)
}

func TestConcurrentGrantsYieldOneAward(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice", models.LanguageEN)
	a := f.achievement(t, "A", 10)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.achieve.GrantAward(context.Background(), &models.SetAchievementRequest{UserID: u.ID, AchievementID: a.ID})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, IsType(err, TypeConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)

	awards, err := f.repo.ListAwards(context.Background(), repository.AwardFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Len(t, awards, 1)
}

func TestUserAchievementsLocalized(t *testing.T) {
	f := newFixture(t)
	ivan := f.user(t, "ivan", models.LanguageRU)
	a := f.achievement(t, "First Steps", 10)
	b := f.achievement(t, "Custom", 5)
	f.translator.table["ru:First Steps"] = "Первые шаги"
	f.translator.table["ru:First Steps description"] = "Описание"

	f.grant(t, ivan, a)
	f.now = f.now.Add(time.Minute)
	f.grant(t, ivan, b)

	list, err := f.achieve.UserAchievements(context.Background(), ivan.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Первые шаги", list[0].AchievementName)
	assert.Equal(t, "Описание", list[0].Description)
	assert.Equal(t, 10, list[0].Scores)
	// untranslatable text degrades to the stored original
	assert.Equal(t, "Custom", list[1].AchievementName)
	assert.Equal(t, "Custom description", list[1].Description)
	assert.Equal(t, 4, f.translator.calls)
}

func TestUserAchievementsSkipsSourceLanguage(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.LanguageEN)
	f.grant(t, alice, f.achievement(t, "A", 10))

	list, err := f.achieve.UserAchievements(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].AchievementName)
	assert.Zero(t, f.translator.calls)
}

func TestUserAchievementsBackendDown(t *testing.T) {
	f := newFixture(t)
	f.translator.failAll = true
	ivan := f.user(t, "ivan", models.LanguageRU)
	f.grant(t, ivan, f.achievement(t, "A", 10))

	list, err := f.achieve.UserAchievements(context.Background(), ivan.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", list[0].AchievementName)
}

func TestUserAchievementsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.achieve.UserAchievements(context.Background(), 77)
	assertServiceError(t, err, TypeNotFound, 404)

	u := f.user(t, "idle", models.LanguageEN)
	_, err = f.achieve.UserAchievements(context.Background(), u.ID)
	assertServiceError(t, err, TypeNotFound, 404)
}

func TestLeaderboardsOnEmptyAwardTable(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice", models.LanguageEN)
	f.achievement(t, "A", 10)
	ctx := context.Background()

	_, err := f.analytics.UsersWithMaxAchievements(ctx)
	assertServiceError(t, err, TypeNotFound, 404)
	_, err = f.analytics.UsersWithMaxScores(ctx)
	assertServiceError(t, err, TypeNotFound, 404)
	_, err = f.analytics.UsersWithMaxDifference(ctx)
	assertServiceError(t, err, TypeNotFound, 404)
	_, err = f.analytics.UsersWithMinDifference(ctx)
	assertServiceError(t, err, TypeNotFound, 404)
	_, err = f.analytics.UsersWithSevenDayStreak(ctx)
	assertServiceError(t, err, TypeNotFound, 404)
}

func TestLeaderboards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	x := f.user(t, "x", models.LanguageEN)
	y := f.user(t, "y", models.LanguageRU)
	z := f.user(t, "z", models.LanguageEN)
	f.user(t, "idle", models.LanguageEN)
	a := f.achievement(t, "A", 10)
	b := f.achievement(t, "B", 20)
	c := f.achievement(t, "C", 30)

	f.grant(t, x, a)
	f.grant(t, x, b)
	f.grant(t, y, c)
	f.grant(t, z, a)

	counts, err := f.analytics.UsersWithMaxAchievements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []analytics.CountEntry{{UserID: x.ID, Username: "x", AchievementCount: 2}}, counts)

	scores, err := f.analytics.UsersWithMaxScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, []analytics.ScoreEntry{
		{UserID: x.ID, Username: "x", TotalScore: 30},
		{UserID: y.ID, Username: "y", TotalScore: 30},
	}, scores)

	maxDiff, err := f.analytics.UsersWithMaxDifference(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 60, maxDiff.CatalogTotal)
	assert.Equal(t, []analytics.DifferenceEntry{{UserID: z.ID, Username: "z", Difference: 50}}, maxDiff.Users)

	minDiff, err := f.analytics.UsersWithMinDifference(ctx)
	require.NoError(t, err)
	assert.Equal(t, []analytics.DifferenceEntry{
		{UserID: x.ID, Username: "x", Difference: 30},
		{UserID: y.ID, Username: "y", Difference: 30},
	}, minDiff.Users)
}

func TestSevenDayStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	streaker := f.user(t, "streaker", models.LanguageEN)
	gappy := f.user(t, "gappy", models.LanguageEN)
	var catalog []*models.Achievement
	for i := 0; i < 7; i++ {
		catalog = append(catalog, f.achievement(t, string(rune('A'+i)), 1))
	}

	for d := 0; d < 7; d++ {
		f.grantAt(t, streaker, catalog[d], f.now.AddDate(0, 0, -d))
		if d != 3 {
			f.grantAt(t, gappy, catalog[d], f.now.AddDate(0, 0, -d))
		}
	}

	got, err := f.analytics.UsersWithSevenDayStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, []analytics.StreakEntry{{UserID: streaker.ID, Username: "streaker"}}, got)

	// a day later the oldest award falls out of the window
	f.now = f.now.AddDate(0, 0, 1)
	_, err = f.analytics.UsersWithSevenDayStreak(ctx)
	assertServiceError(t, err, TypeNotFound, 404)
}

func TestDifferenceNeverNegativeUnderConcurrentWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	x := f.user(t, "x", models.LanguageEN)
	f.grant(t, x, f.achievement(t, "seed", 10))

	const rounds = 20
	writeErr := make(chan error, 1)
	go func() {
		defer close(writeErr)
		for i := 0; i < rounds; i++ {
			a := &models.Achievement{Name: fmt.Sprintf("extra-%d", i), Scores: 20}
			if err := f.repo.CreateAchievement(ctx, a); err != nil {
				writeErr <- err
				return
			}
			award := &models.UserAchievement{UserID: x.ID, AchievementID: a.ID, AwardedAt: f.now}
			if err := f.repo.GrantAward(ctx, award); err != nil {
				writeErr <- err
				return
			}
		}
	}()

	done := false
	for !done {
		select {
		case err := <-writeErr:
			require.NoError(t, err)
			done = true
		default:
		}

		for _, read := range []func(context.Context) (*DifferenceResult, error){
			f.analytics.UsersWithMinDifference,
			f.analytics.UsersWithMaxDifference,
		} {
			res, err := read(ctx)
			require.NoError(t, err)
			require.Len(t, res.Users, 1)
			assert.GreaterOrEqual(t, res.Users[0].Difference, int64(0))
			assert.LessOrEqual(t, res.Users[0].Difference, res.CatalogTotal)
		}
	}

	res, err := f.analytics.UsersWithMinDifference(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10+rounds*20, res.CatalogTotal)
	assert.Equal(t, []analytics.DifferenceEntry{{UserID: x.ID, Username: "x", Difference: 0}}, res.Users)
}

// rejectingStore fails every insert with the given error
type rejectingStore struct {
	*repository.Repository
	err error
}

func (s rejectingStore) CreateUser(context.Context, *models.User) error { return s.err }

func (s rejectingStore) CreateAchievement(context.Context, *models.Achievement) error { return s.err }

func TestCreateErrorsDescribeTheInsert(t *testing.T) {
	ctx := context.Background()
	store := rejectingStore{err: fmt.Errorf("create: %w", repository.ErrNotFound)}
	svc := NewAchievementService(store, locale.Nop{}, "en", nil, zap.NewNop())

	_, err := svc.CreateUser(ctx, &models.CreateUserRequest{Username: "alice", Language: models.LanguageEN})
	assertServiceError(t, err, TypeNotFound, 404)
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "User could not be created", se.Message)

	_, err = svc.CreateAchievement(ctx, &models.CreateAchievementRequest{AchievementName: "A", Scores: intPtr(1)})
	assertServiceError(t, err, TypeNotFound, 404)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Achievement could not be created", se.Message)

	store.err = repository.ErrUnavailable
	svc = NewAchievementService(store, locale.Nop{}, "en", nil, zap.NewNop())
	_, err = svc.CreateUser(ctx, &models.CreateUserRequest{Username: "alice", Language: models.LanguageEN})
	assertServiceError(t, err, TypeStoreUnavailable, 503)
}

type brokenStore struct{}

func (brokenStore) UserTotals(context.Context) ([]analytics.UserTotal, error) {
	return nil, repository.ErrUnavailable
}

func (brokenStore) CatalogSnapshot(context.Context) (analytics.CatalogSnapshot, error) {
	return analytics.CatalogSnapshot{}, repository.ErrUnavailable
}

func (brokenStore) AwardsBetween(context.Context, time.Time, time.Time) ([]analytics.AwardEvent, error) {
	return nil, repository.ErrUnavailable
}

func TestAnalyticsStoreUnavailable(t *testing.T) {
	svc := NewAnalyticsService(brokenStore{}, time.UTC, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.UsersWithMaxAchievements(ctx)
	assertServiceError(t, err, TypeStoreUnavailable, 503)
	_, err = svc.UsersWithMaxDifference(ctx)
	assertServiceError(t, err, TypeStoreUnavailable, 503)
	_, err = svc.UsersWithSevenDayStreak(ctx)
	assertServiceError(t, err, TypeStoreUnavailable, 503)
}
