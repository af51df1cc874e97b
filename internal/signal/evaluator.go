// Package signal turns odds quotes and fair probabilities into actionable
// betting signals.
package signal

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/fairprob"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/oddsmath"
	"github.com/yourusername/sharpline/internal/rating"
)

// Config holds the signal generation thresholds. Edges are percentages.
type Config struct {
	MinEdgeSides   float64 // minimum edge for moneyline/spread/total
	MinEdgeProps   float64 // props carry more model uncertainty, higher bar
	MaxEdge        float64 // sanity cap; above this is treated as data error
	KellyFraction  float64
	MinSampleGames int // below this, confidence is downgraded one tier
	ModelVersion   string
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MinEdgeSides:   2.0,
		MinEdgeProps:   3.0,
		MaxEdge:        20.0,
		KellyFraction:  0.25,
		MinSampleGames: 3,
		ModelVersion:   "elo-v2",
	}
}

// minExpiryBuffer keeps freshly generated signals alive at least this long
const minExpiryBuffer = 5 * time.Minute

// Evaluator generates signals for one game from its current quote set
type Evaluator struct {
	estimator *fairprob.Estimator
	store     *rating.Store
	cfg       Config
	logger    *logrus.Logger
}

// NewEvaluator creates a signal evaluator
func NewEvaluator(estimator *fairprob.Estimator, store *rating.Store, cfg Config, logger *logrus.Logger) *Evaluator {
	return &Evaluator{
		estimator: estimator,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// Evaluate produces signals for every quote whose edge clears the threshold.
// Quotes that cannot be priced (props, missing lines, unresolved selections)
// are skipped individually; a bad quote never aborts the game.
func (e *Evaluator) Evaluate(game *models.Game, quotes []*models.OddsQuote, now time.Time) []*models.Signal {
	latest := latestQuotes(quotes)
	pairs := groupForVigRemoval(latest)

	insufficientSample := e.store.GamesPlayed(game.HomeTeamID) < e.cfg.MinSampleGames ||
		e.store.GamesPlayed(game.AwayTeamID) < e.cfg.MinSampleGames
	if insufficientSample {
		e.logger.WithFields(logrus.Fields{
			"game_id":    game.ID,
			"home_games": e.store.GamesPlayed(game.HomeTeamID),
			"away_games": e.store.GamesPlayed(game.AwayTeamID),
		}).Debug("Insufficient sample size, confidence will be downgraded")
	}

	var signals []*models.Signal
	for _, quote := range latest {
		sig, ok := e.evaluateQuote(game, quote, pairs, insufficientSample, now)
		if ok {
			signals = append(signals, sig)
		}
	}
	return signals
}

func (e *Evaluator) evaluateQuote(
	game *models.Game,
	quote *models.OddsQuote,
	pairs map[models.PairKey]map[models.SelectionSide]float64,
	insufficientSample bool,
	now time.Time,
) (*models.Signal, bool) {
	log := e.logger.WithFields(logrus.Fields{
		"game_id":    game.ID,
		"market":     quote.MarketType,
		"sportsbook": quote.Sportsbook,
		"selection":  quote.SelectionText,
	})

	fairProb, ok, err := e.estimator.FairProbability(game, quote)
	if err != nil {
		log.WithError(err).Warn("Cannot price selection, skipping quote")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	rawImplied, err := oddsmath.ImpliedProbability(quote.PriceAmerican)
	if err != nil {
		log.WithError(err).Warn("Invalid price, skipping quote")
		return nil, false
	}

	implied := e.devig(quote, pairs, rawImplied)
	edge := oddsmath.CalculateEdge(fairProb, implied)

	minEdge := e.cfg.MinEdgeProps
	if quote.MarketType.IsSide() {
		minEdge = e.cfg.MinEdgeSides
	}
	if edge < minEdge {
		return nil, false
	}
	if edge > e.cfg.MaxEdge {
		log.WithField("edge_percent", edge).Warn("Edge exceeds sanity cap, treating as data error")
		return nil, false
	}

	tier := tierForEdge(edge)
	if insufficientSample {
		tier = tier.Downgrade()
	}

	sig := &models.Signal{
		ID:                 uuid.New(),
		GameID:             game.ID,
		MarketType:         quote.MarketType,
		Side:               quote.Side,
		SelectionText:      quote.SelectionText,
		LineValue:          quote.LineValue,
		Sportsbook:         quote.Sportsbook,
		PriceAmerican:      quote.PriceAmerican,
		FairProbability:    fairProb,
		ImpliedProbability: implied,
		RawImpliedProb:     rawImplied,
		EdgePercent:        edge,
		ConfidenceTier:     tier,
		KellyFraction:      e.cfg.KellyFraction,
		ModelVersion:       e.cfg.ModelVersion,
		Status:             models.SignalStatusActive,
		GeneratedAt:        now,
		ExpiresAt:          computeExpiry(game.ScheduledAt, e.estimator.Params().SignalExpiryOffset, now),
	}

	log.WithFields(logrus.Fields{
		"edge_percent": edge,
		"fair_prob":    fairProb,
		"implied_prob": implied,
		"confidence":   tier,
	}).Info("Signal generated")

	return sig, true
}

// devig returns the vig-removed probability when the quote belongs to a
// complete two-way pair, otherwise the raw implied probability.
func (e *Evaluator) devig(
	quote *models.OddsQuote,
	pairs map[models.PairKey]map[models.SelectionSide]float64,
	rawImplied float64,
) float64 {
	sides, ok := pairs[quote.GroupKey()]
	if !ok || len(sides) != 2 {
		return rawImplied
	}

	opposite, err := quote.Side.Opposite()
	if err != nil {
		return rawImplied
	}
	otherProb, ok := sides[opposite]
	if !ok {
		return rawImplied
	}

	fair, _, err := oddsmath.RemoveVigMultiplicative(rawImplied, otherProb)
	if err != nil {
		return rawImplied
	}
	return fair
}

// tierForEdge maps edge magnitude to a confidence tier
func tierForEdge(edge float64) models.ConfidenceTier {
	switch {
	case edge >= 5.0:
		return models.ConfidenceHigh
	case edge >= 3.5:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

// computeExpiry clamps the sport-specific expiry into [now+buffer, scheduled].
// Signals never expire in the past and never outlive the kickoff.
func computeExpiry(scheduled time.Time, offset time.Duration, now time.Time) time.Time {
	expiry := scheduled.Add(-offset)
	if floor := now.Add(minExpiryBuffer); expiry.Before(floor) {
		expiry = floor
	}
	if expiry.After(scheduled) {
		expiry = scheduled
	}
	return expiry
}

// latestQuotes keeps only the most recent quote per
// (market, sportsbook, side, line) combination.
func latestQuotes(quotes []*models.OddsQuote) []*models.OddsQuote {
	type key struct {
		market     models.MarketType
		sportsbook string
		side       models.SelectionSide
		line       float64
		hasLine    bool
	}

	latest := make(map[key]*models.OddsQuote)
	for _, q := range quotes {
		k := key{market: q.MarketType, sportsbook: q.Sportsbook, side: q.Side}
		if q.LineValue != nil {
			k.line = *q.LineValue
			k.hasLine = true
		}
		if existing, ok := latest[k]; !ok || q.ObservedAt.After(existing.ObservedAt) {
			latest[k] = q
		}
	}

	out := make([]*models.OddsQuote, 0, len(latest))
	for _, q := range latest {
		out = append(out, q)
	}

	// Map iteration order would make signal output order vary run to run
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MarketType != b.MarketType {
			return a.MarketType < b.MarketType
		}
		if a.Sportsbook != b.Sportsbook {
			return a.Sportsbook < b.Sportsbook
		}
		if a.Side != b.Side {
			return a.Side < b.Side
		}
		return lineOrZero(a) < lineOrZero(b)
	})
	return out
}

func lineOrZero(q *models.OddsQuote) float64 {
	if q.LineValue == nil {
		return 0
	}
	return *q.LineValue
}

// groupForVigRemoval indexes implied probabilities by two-way pair key
func groupForVigRemoval(quotes []*models.OddsQuote) map[models.PairKey]map[models.SelectionSide]float64 {
	pairs := make(map[models.PairKey]map[models.SelectionSide]float64)
	for _, q := range quotes {
		implied, err := oddsmath.ImpliedProbability(q.PriceAmerican)
		if err != nil {
			continue
		}
		k := q.GroupKey()
		if pairs[k] == nil {
			pairs[k] = make(map[models.SelectionSide]float64)
		}
		pairs[k][q.Side] = implied
	}
	return pairs
}
