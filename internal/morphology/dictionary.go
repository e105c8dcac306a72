package morphology

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Dictionary is a lemma dictionary for inflected open-class words.
// *golem.Lemmatizer satisfies it.
type Dictionary interface {
	Lemma(word string) string
	InDict(word string) bool
}

var (
	englishDict     *golem.Lemmatizer
	englishDictErr  error
	englishDictOnce sync.Once
)

// EnglishDictionary loads the golem English dictionary once per process.
func EnglishDictionary() (Dictionary, error) {
	englishDictOnce.Do(func() {
		slog.Debug("[Morphology] Loading English lemma dictionary")
		englishDict, englishDictErr = golem.New(en.New())
		if englishDictErr != nil {
			englishDictErr = fmt.Errorf("[Morphology] failed to load golem dictionary: %w", englishDictErr)
		}
	})
	if englishDictErr != nil {
		return nil, englishDictErr
	}
	return englishDict, nil
}
