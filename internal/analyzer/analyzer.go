// Package analyzer runs the full pipeline: tokenize, tag, reduce, score and
// rewrite. An Analyzer is immutable after construction and safe for
// concurrent use.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spacesedan/writeclean/internal/apperrors"
	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/morphology"
	"github.com/spacesedan/writeclean/internal/rewrite"
	"github.com/spacesedan/writeclean/internal/sentiment"
	"github.com/spacesedan/writeclean/internal/tagger"
	"github.com/spacesedan/writeclean/internal/tokenizer"
)

type Config struct {
	// LexiconDir overrides the embedded lexicons when set.
	LexiconDir       string
	EmotionThreshold float64
	RecencyWeight    float64
	VaderFallback    bool
}

func DefaultConfig() Config {
	s := sentiment.DefaultConfig()
	return Config{
		EmotionThreshold: s.EmotionThreshold,
		RecencyWeight:    s.RecencyWeight,
		VaderFallback:    s.VaderFallback,
	}
}

type Analyzer struct {
	lex       *lexicon.Lexicons
	tokenizer *tokenizer.Tokenizer
	tagger    *tagger.Tagger
	reducer   *morphology.Reducer
	sentiment *sentiment.Analyzer
	rewriter  *rewrite.Generator
}

// New wires the pipeline stages over already loaded lexicons.
func New(lex *lexicon.Lexicons, cfg Config) (*Analyzer, error) {
	dict, err := morphology.EnglishDictionary()
	if err != nil {
		return nil, &apperrors.LexiconLoadError{Name: "golem/en", Err: err}
	}

	tg := tagger.New(lex.Words)
	a := &Analyzer{
		lex:       lex,
		tokenizer: tokenizer.New(lex.Words.Abbreviations, lex.Words.LeadingContractions),
		tagger:    tg,
		reducer: morphology.New(lex.Morphology,
			morphology.WithDictionary(dict),
			morphology.WithVocabulary(tg.Known),
		),
		sentiment: sentiment.New(lex.Sentiment, sentiment.Config{
			EmotionThreshold: cfg.EmotionThreshold,
			RecencyWeight:    cfg.RecencyWeight,
			VaderFallback:    cfg.VaderFallback,
		}),
		rewriter: rewrite.New(lex.Sentiment, lex.Rewrite, rewrite.WithVocabulary(tg.Known)),
	}

	slog.Debug("[Analyzer] Pipeline ready",
		slog.String("lexicons", lex.Source),
		slog.Bool("vader_fallback", cfg.VaderFallback))
	return a, nil
}

// NewFromConfig loads lexicons from cfg.LexiconDir, or the embedded set when
// it is empty, and builds an Analyzer.
func NewFromConfig(cfg Config) (*Analyzer, error) {
	var (
		lex *lexicon.Lexicons
		err error
	)
	if cfg.LexiconDir == "" {
		lex, err = lexicon.Default()
	} else {
		lex, err = lexicon.Load(cfg.LexiconDir)
	}
	if err != nil {
		return nil, err
	}
	return New(lex, cfg)
}

var (
	defaultAnalyzer *Analyzer
	defaultErr      error
	defaultOnce     sync.Once
)

// Default returns a process-wide Analyzer over the embedded lexicons.
func Default() (*Analyzer, error) {
	defaultOnce.Do(func() {
		defaultAnalyzer, defaultErr = NewFromConfig(DefaultConfig())
	})
	return defaultAnalyzer, defaultErr
}

// Analyze runs text through the default Analyzer.
func Analyze(text string) (*models.AnalysisResult, error) {
	a, err := Default()
	if err != nil {
		return nil, err
	}
	return a.Analyze(text)
}

func (a *Analyzer) Lexicons() *lexicon.Lexicons {
	return a.lex
}

// Analyze returns a fresh result for text. It fails with EmptyInputError for
// blank text and AnalysisError when a stage produced inconsistent output; no
// partial result is returned.
func (a *Analyzer) Analyze(text string) (*models.AnalysisResult, error) {
	res, err := a.tokenizer.Tokenize(text)
	if err != nil {
		return nil, err
	}

	tagged := a.tagger.Tag(res.Tokens)
	tokens := make([]models.Token, len(tagged))
	for i, tok := range tagged {
		forms := a.reducer.Reduce(tok.Text, tok.Tag)
		tokens[i] = models.Token{
			Word:         tok.Text,
			PosTag:       tok.Tag,
			IsStopWord:   tok.IsStopWord,
			StemPorter:   forms.Aggressive,
			StemSnowball: forms.Conservative,
			LemmaWordNet: forms.Dictionary,
			LemmaSpacy:   forms.Heuristic,
		}
	}

	result := &models.AnalysisResult{
		Tokens:      tokens,
		Sentiment:   a.sentiment.Analyze(res, tagged),
		Improvement: a.rewriter.Rewrite(text, res),
		RawText:     text,
	}
	if err := validate(text, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AnalyzeContext checks ctx before starting. The pipeline itself does not
// block, so a deadline that has not passed yet is never hit midway.
func (a *Analyzer) AnalyzeContext(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("[Analyzer] analysis not started: %w", err)
	}
	return a.Analyze(text)
}
