package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/repository"
)

// In-memory repositories for service-level tests. Read methods hand out
// copies the way a row scan would, so engine mutations never leak into the
// "stored" state without an explicit write call.

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeTeamRepo struct {
	teams map[uuid.UUID]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[uuid.UUID]*models.Team)}
}

func (f *fakeTeamRepo) Upsert(_ context.Context, team *models.Team) error {
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	if t, ok := f.teams[id]; ok {
		return t, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeTeamRepo) GetByExternalID(_ context.Context, externalID string) (*models.Team, error) {
	for _, t := range f.teams {
		if t.ExternalID == externalID {
			return t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeTeamRepo) GetBySport(_ context.Context, sport string) ([]*models.Team, error) {
	var out []*models.Team
	for _, t := range f.teams {
		if t.Sport == sport {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeGameRepo struct {
	games map[uuid.UUID]*models.Game
	bets  *fakeBetRepo
}

func newFakeGameRepo(bets *fakeBetRepo) *fakeGameRepo {
	return &fakeGameRepo{games: make(map[uuid.UUID]*models.Game), bets: bets}
}

func (f *fakeGameRepo) add(game *models.Game) {
	copied := *game
	f.games[game.ID] = &copied
}

func (f *fakeGameRepo) Upsert(_ context.Context, game *models.Game) error {
	f.add(game)
	return nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (f *fakeGameRepo) GetByExternalID(_ context.Context, externalID string) (*models.Game, error) {
	for _, g := range f.games {
		if g.ExternalID == externalID {
			copied := *g
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeGameRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Game, error) {
	out := make(map[uuid.UUID]*models.Game, len(ids))
	for _, id := range ids {
		if g, ok := f.games[id]; ok {
			copied := *g
			out[id] = &copied
		}
	}
	return out, nil
}

func (f *fakeGameRepo) GetUpcoming(_ context.Context, sport string, within time.Duration) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		if g.Sport == sport && g.Status == models.GameStatusScheduled {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) GetFinalWithPendingBets(_ context.Context) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		if g.Status != models.GameStatusFinal && g.Status != models.GameStatusCancelled {
			continue
		}
		if !f.bets.hasPendingOn(g.ID) {
			continue
		}
		copied := *g
		out = append(out, &copied)
	}
	sortGamesBySchedule(out)
	return out, nil
}

func (f *fakeGameRepo) GetFinalWithUnappliedRatings(_ context.Context) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		if g.Status == models.GameStatusFinal && !g.RatingApplied {
			copied := *g
			out = append(out, &copied)
		}
	}
	sortGamesBySchedule(out)
	return out, nil
}

func (f *fakeGameRepo) MarkRatingApplied(_ context.Context, id uuid.UUID) error {
	g, ok := f.games[id]
	if !ok {
		return models.ErrNotFound
	}
	g.RatingApplied = true
	return nil
}

func (f *fakeGameRepo) RecordResult(_ context.Context, id uuid.UUID, homeScore, awayScore int, status models.GameStatus) error {
	g, ok := f.games[id]
	if !ok {
		return models.ErrNotFound
	}
	g.HomeScore, g.AwayScore = &homeScore, &awayScore
	g.Status = status
	return nil
}

func sortGamesBySchedule(games []*models.Game) {
	sort.Slice(games, func(i, j int) bool {
		return games[i].ScheduledAt.Before(games[j].ScheduledAt)
	})
}

type fakeOddsRepo struct {
	quotes map[uuid.UUID][]*models.OddsQuote
}

func newFakeOddsRepo() *fakeOddsRepo {
	return &fakeOddsRepo{quotes: make(map[uuid.UUID][]*models.OddsQuote)}
}

func (f *fakeOddsRepo) Insert(_ context.Context, quote *models.OddsQuote) error {
	f.quotes[quote.GameID] = append(f.quotes[quote.GameID], quote)
	return nil
}

func (f *fakeOddsRepo) InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error {
	for _, q := range quotes {
		if err := f.Insert(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeOddsRepo) GetByGameID(_ context.Context, gameID uuid.UUID) ([]*models.OddsQuote, error) {
	return f.quotes[gameID], nil
}

func (f *fakeOddsRepo) GetByGameIDSince(_ context.Context, gameID uuid.UUID, since time.Time) ([]*models.OddsQuote, error) {
	var out []*models.OddsQuote
	for _, q := range f.quotes[gameID] {
		if !q.ObservedAt.Before(since) {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeSignalRepo struct {
	signals  map[uuid.UUID]*models.Signal
	clv      map[uuid.UUID]float64
	consumed []uuid.UUID
}

func newFakeSignalRepo() *fakeSignalRepo {
	return &fakeSignalRepo{
		signals: make(map[uuid.UUID]*models.Signal),
		clv:     make(map[uuid.UUID]float64),
	}
}

func (f *fakeSignalRepo) UpsertActive(_ context.Context, signal *models.Signal) error {
	f.signals[signal.ID] = signal
	return nil
}

func (f *fakeSignalRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Signal, error) {
	if s, ok := f.signals[id]; ok {
		return s, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeSignalRepo) GetActive(_ context.Context, now time.Time) ([]*models.Signal, error) {
	var out []*models.Signal
	for _, s := range f.signals {
		if s.IsActive(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSignalRepo) ExpireStale(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeSignalRepo) MarkConsumed(_ context.Context, id uuid.UUID) error {
	if s, ok := f.signals[id]; ok {
		s.Status = models.SignalStatusConsumed
	}
	f.consumed = append(f.consumed, id)
	return nil
}

func (f *fakeSignalRepo) UpdateCLV(_ context.Context, id uuid.UUID, clvPercent float64) error {
	f.clv[id] = clvPercent
	return nil
}

func (f *fakeSignalRepo) AverageCLV(_ context.Context, _ string, _ models.MarketType) (float64, bool, error) {
	return 0, false, nil
}

type fakeBetRepo struct {
	bets map[uuid.UUID]*models.Bet

	createErr error
	settleErr func(*models.Bet) error
}

func newFakeBetRepo() *fakeBetRepo {
	return &fakeBetRepo{bets: make(map[uuid.UUID]*models.Bet)}
}

func (f *fakeBetRepo) add(bet *models.Bet) {
	copied := *bet
	f.bets[bet.ID] = &copied
}

func (f *fakeBetRepo) hasPendingOn(gameID uuid.UUID) bool {
	for _, b := range f.bets {
		if b.GameID == gameID && b.Status == models.BetStatusPending {
			return true
		}
	}
	return false
}

func (f *fakeBetRepo) Create(_ context.Context, bet *models.Bet) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(bet)
	return nil
}

func (f *fakeBetRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Bet, error) {
	b, ok := f.bets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBetRepo) GetPending(_ context.Context) ([]*models.Bet, error) {
	var out []*models.Bet
	for _, b := range f.bets {
		if b.Status == models.BetStatusPending {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBetRepo) GetPendingByGameID(_ context.Context, gameID uuid.UUID) ([]*models.Bet, error) {
	var out []*models.Bet
	for _, b := range f.bets {
		if b.GameID == gameID && b.Status == models.BetStatusPending {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBetRepo) GetSettled(_ context.Context) ([]*models.Bet, error) {
	var out []*models.Bet
	for _, b := range f.bets {
		if b.Status.Terminal() {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBetRepo) Settle(_ context.Context, bet *models.Bet) error {
	if f.settleErr != nil {
		if err := f.settleErr(bet); err != nil {
			return err
		}
	}
	if _, ok := f.bets[bet.ID]; !ok {
		return models.ErrNotFound
	}
	f.add(bet)
	return nil
}

type fakeDecisionRepo struct {
	decisions []*models.Decision
	insertErr error
}

func (f *fakeDecisionRepo) Insert(_ context.Context, decision *models.Decision) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.decisions = append(f.decisions, decision)
	return nil
}

func (f *fakeDecisionRepo) GetBySignalID(_ context.Context, signalID uuid.UUID) ([]*models.Decision, error) {
	var out []*models.Decision
	for _, d := range f.decisions {
		if d.SignalID == signalID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDecisionRepo) GetRecent(_ context.Context, limit int) ([]*models.Decision, error) {
	if limit > len(f.decisions) {
		limit = len(f.decisions)
	}
	return f.decisions[len(f.decisions)-limit:], nil
}

type fakeBankrollRepo struct {
	state *models.BankrollState
}

func (f *fakeBankrollRepo) Get(_ context.Context) (*models.BankrollState, error) {
	copied := *f.state
	return &copied, nil
}

func (f *fakeBankrollRepo) Update(_ context.Context, bankroll *models.BankrollState) error {
	copied := *bankroll
	f.state = &copied
	return nil
}

type fakeStrategyRepo struct {
	byName map[string]*models.Strategy
}

func (f *fakeStrategyRepo) Create(_ context.Context, strategy *models.Strategy) error {
	f.byName[strategy.Name] = strategy
	return nil
}

func (f *fakeStrategyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Strategy, error) {
	for _, s := range f.byName {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeStrategyRepo) GetByName(_ context.Context, name string) (*models.Strategy, error) {
	if s, ok := f.byName[name]; ok {
		return s, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStrategyRepo) GetEnabled(_ context.Context) ([]*models.Strategy, error) {
	var out []*models.Strategy
	for _, s := range f.byName {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStrategyRepo) Update(_ context.Context, strategy *models.Strategy) error {
	f.byName[strategy.Name] = strategy
	return nil
}

type fakeRatingRepo struct {
	ratings   map[uuid.UUID]*models.TeamRating
	upsertErr error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[uuid.UUID]*models.TeamRating)}
}

func (f *fakeRatingRepo) GetAll(_ context.Context) ([]*models.TeamRating, error) {
	var out []*models.TeamRating
	for _, r := range f.ratings {
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRatingRepo) UpsertBatch(_ context.Context, ratings []*models.TeamRating) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range ratings {
		copied := *r
		f.ratings[r.TeamID] = &copied
	}
	return nil
}

// fakeRepos bundles the fakes with the Repositories wiring the services expect
type fakeRepos struct {
	teams      *fakeTeamRepo
	games      *fakeGameRepo
	odds       *fakeOddsRepo
	signals    *fakeSignalRepo
	bets       *fakeBetRepo
	decisions  *fakeDecisionRepo
	bankroll   *fakeBankrollRepo
	strategies *fakeStrategyRepo
	ratings    *fakeRatingRepo
}

func newFakeRepos() (*repository.Repositories, *fakeRepos) {
	bets := newFakeBetRepo()
	f := &fakeRepos{
		teams:      newFakeTeamRepo(),
		games:      newFakeGameRepo(bets),
		odds:       newFakeOddsRepo(),
		signals:    newFakeSignalRepo(),
		bets:       bets,
		decisions:  &fakeDecisionRepo{},
		bankroll:   &fakeBankrollRepo{state: &models.BankrollState{StartingBalance: 10000, Balance: 10000}},
		strategies: &fakeStrategyRepo{byName: make(map[string]*models.Strategy)},
		ratings:    newFakeRatingRepo(),
	}
	repos := &repository.Repositories{
		Team:     f.teams,
		Game:     f.games,
		Odds:     f.odds,
		Signal:   f.signals,
		Bet:      f.bets,
		Decision: f.decisions,
		Bankroll: f.bankroll,
		Strategy: f.strategies,
		Rating:   f.ratings,
	}
	return repos, f
}
