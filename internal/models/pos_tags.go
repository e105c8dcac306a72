package models

// Coarse part-of-speech tags carried in Token.PosTag.
const (
	PosNoun         = "noun"
	PosVerb         = "verb"
	PosAdjective    = "adjective"
	PosAdverb       = "adverb"
	PosDeterminer   = "determiner"
	PosPronoun      = "pronoun"
	PosPreposition  = "preposition"
	PosConjunction  = "conjunction"
	PosInterjection = "interjection"
	PosPunctuation  = "punctuation"
	PosOther        = "other"
)

var posTags = map[string]bool{
	PosNoun:         true,
	PosVerb:         true,
	PosAdjective:    true,
	PosAdverb:       true,
	PosDeterminer:   true,
	PosPronoun:      true,
	PosPreposition:  true,
	PosConjunction:  true,
	PosInterjection: true,
	PosPunctuation:  true,
	PosOther:        true,
}

func IsPosTag(tag string) bool {
	return posTags[tag]
}

// CoarsePos folds a tag into the noun/verb/adjective/adverb/other classes
// used for lemma lookups.
func CoarsePos(tag string) string {
	switch tag {
	case PosNoun, PosVerb, PosAdjective, PosAdverb:
		return tag
	default:
		return PosOther
	}
}

// Sentiment labels, ordered from most negative to most positive.
const (
	LabelVeryBad  = "Very Bad"
	LabelBad      = "Bad"
	LabelNeutral  = "Neutral"
	LabelGood     = "Good"
	LabelVeryGood = "Very Good"
)

// LabelForScore maps a document score onto the five-point label scale.
func LabelForScore(score float64) string {
	switch {
	case score >= 0.6:
		return LabelVeryGood
	case score >= 0.2:
		return LabelGood
	case score > -0.2:
		return LabelNeutral
	case score > -0.6:
		return LabelBad
	default:
		return LabelVeryBad
	}
}
