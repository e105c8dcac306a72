package analyzer

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/spacesedan/writeclean/internal/apperrors"
	"github.com/spacesedan/writeclean/internal/models"
)

// validate checks the cross-stage guarantees of a result before it leaves
// the engine.
func validate(input string, result *models.AnalysisResult) error {
	if len(result.Tokens) == 0 {
		return &apperrors.AnalysisError{Stage: "tokenizer", Detail: "no tokens for non-empty input"}
	}

	for i, tok := range result.Tokens {
		if utf8.RuneCountInString(tok.StemSnowball) < utf8.RuneCountInString(tok.StemPorter) {
			return &apperrors.AnalysisError{
				Stage:  "morphology",
				Detail: fmt.Sprintf("token %d %q: conservative stem %q shorter than aggressive stem %q", i, tok.Word, tok.StemSnowball, tok.StemPorter),
			}
		}
		if !models.IsPosTag(tok.PosTag) {
			return &apperrors.AnalysisError{
				Stage:  "tagger",
				Detail: fmt.Sprintf("token %d %q: unknown tag %q", i, tok.Word, tok.PosTag),
			}
		}
	}

	s := result.Sentiment
	if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) || s.Score < -1 || s.Score > 1 {
		return &apperrors.AnalysisError{Stage: "sentiment", Detail: fmt.Sprintf("score %v out of range", s.Score)}
	}
	if want := models.LabelForScore(s.Score); s.Label != want {
		return &apperrors.AnalysisError{
			Stage:  "sentiment",
			Detail: fmt.Sprintf("label %q does not match score %.4f (want %q)", s.Label, s.Score, want),
		}
	}

	if result.Improvement.Original != input || result.RawText != input {
		return &apperrors.AnalysisError{Stage: "rewrite", Detail: "original text was altered"}
	}
	if result.Improvement.Improved == "" {
		return &apperrors.AnalysisError{Stage: "rewrite", Detail: "improved text is empty"}
	}
	return nil
}
