package textscore

import (
	"context"
	"sync"

	"github.com/jonreiter/govader"
)

// Scorer rates the sentiment of text on [-1,1].
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Vader scores text with the VADER lexicon and returns the compound score.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
	mu       sync.Mutex
}

// NewVader loads the VADER lexicon.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the VADER compound polarity of text.
func (v *Vader) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.analyzer.PolarityScores(text).Compound, nil
}
