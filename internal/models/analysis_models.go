package models

import "time"

// Token is one word, punctuation, number or emoji unit of the analyzed text.
// The JSON field names are the contract the front end renders from.
type Token struct {
	Word         string `json:"word" dynamodbav:"word"`
	PosTag       string `json:"posTag" dynamodbav:"pos_tag"`
	IsStopWord   bool   `json:"isStopWord" dynamodbav:"is_stop_word"`
	StemPorter   string `json:"stemPorter" dynamodbav:"stem_porter"`
	StemSnowball string `json:"stemSnowball" dynamodbav:"stem_snowball"`
	LemmaWordNet string `json:"lemmaWordNet" dynamodbav:"lemma_wordnet"`
	LemmaSpacy   string `json:"lemmaSpacy" dynamodbav:"lemma_spacy"`
}

type SentimentResult struct {
	Score              float64  `json:"score" dynamodbav:"score"`
	Label              string   `json:"label" dynamodbav:"label"`
	Explanation        string   `json:"explanation" dynamodbav:"explanation"`
	EmotionalSentences []string `json:"emotionalSentences" dynamodbav:"emotional_sentences"`
	SlangDetected      []string `json:"slangDetected" dynamodbav:"slang_detected"`
	EmojiSentiment     []string `json:"emojiSentiment" dynamodbav:"emoji_sentiment"`
}

type Improvement struct {
	Original string   `json:"original" dynamodbav:"original"`
	Improved string   `json:"improved" dynamodbav:"improved"`
	Changes  []string `json:"changes" dynamodbav:"changes"`
}

// AnalysisResult is the unit returned per analysis request.
type AnalysisResult struct {
	Tokens      []Token         `json:"tokens" dynamodbav:"tokens"`
	Sentiment   SentimentResult `json:"sentiment" dynamodbav:"sentiment"`
	Improvement Improvement     `json:"improvement" dynamodbav:"improvement"`
	RawText     string          `json:"rawText" dynamodbav:"raw_text"`
}

const (
	InputFormatPlain    = "plain"
	InputFormatMarkdown = "markdown"
)

type AnalysisRequest struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
	Format    string `json:"format,omitempty"`
}

// AnalysisRecord is what travels on the results topic and lands in DynamoDB.
type AnalysisRecord struct {
	RequestID      string         `json:"request_id" dynamodbav:"request_id"`
	SentimentScore float64        `json:"sentiment_score" dynamodbav:"sentiment_score"`
	SentimentLabel string         `json:"sentiment_label" dynamodbav:"sentiment_label"`
	TokenCount     int            `json:"token_count" dynamodbav:"token_count"`
	SlangDetected  []string       `json:"slang_detected" dynamodbav:"slang_detected,omitempty"`
	Result         AnalysisResult `json:"result" dynamodbav:"result"`
	CreatedAt      time.Time      `json:"created_at" dynamodbav:"-"`
}

// AnalysisFailure is published when a request cannot be analyzed.
type AnalysisFailure struct {
	RequestID string    `json:"request_id"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failed_at"`
}

func NewAnalysisRecord(requestID string, result *AnalysisResult) AnalysisRecord {
	return AnalysisRecord{
		RequestID:      requestID,
		SentimentScore: result.Sentiment.Score,
		SentimentLabel: result.Sentiment.Label,
		TokenCount:     len(result.Tokens),
		SlangDetected:  result.Sentiment.SlangDetected,
		Result:         *result,
		CreatedAt:      time.Now().UTC(),
	}
}
