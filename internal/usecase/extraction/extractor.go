package extraction

import (
	"context"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// Sentence is one segmented utterance of a transcript. Speaker is nil when
// the line carried no "Name:" prefix. Text is the sentence exactly as it
// appears in the transcript content.
type Sentence struct {
	Speaker *string
	Text    string
}

// Candidate is one raw extracted item before filtering and verification.
type Candidate struct {
	Kind           entities.ItemKind
	Text           string
	Owner          *string
	DueDate        *string
	SourceSentence *string
	Confidence     float64
}

// Extractor turns a transcript into insight candidates. Implementations must
// be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, transcript string, sentences []Sentence) ([]Candidate, error)
	Model() string
}
