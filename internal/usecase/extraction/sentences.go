package extraction

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// speakerLine matches "Name: said something" transcript lines. The name part
// is capped so prose like "Note: check this" with long prefixes still parses,
// while URLs and timestamps do not.
var speakerLine = regexp.MustCompile(`^([A-Z][A-Za-z .'\-]{0,40}?):\s+(.+)$`)

// SplitSentences segments a transcript into speaker-attributed sentences.
// Sentence text is kept verbatim so it can serve as an anchor back into the
// transcript content.
func SplitSentences(transcript *entities.Transcript) ([]Sentence, error) {
	var sentences []Sentence
	for _, line := range transcript.Lines() {
		var speaker *string
		text := strings.TrimSpace(line)

		if m := speakerLine.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			speaker = &name
			text = m[2]
		}

		doc, err := prose.NewDocument(text,
			prose.WithTagging(false),
			prose.WithExtraction(false),
		)
		if err != nil {
			return nil, err
		}
		for _, sent := range doc.Sentences() {
			st := strings.TrimSpace(sent.Text)
			if st == "" {
				continue
			}
			sentences = append(sentences, Sentence{Speaker: speaker, Text: st})
		}
	}
	return sentences, nil
}

// anchorSentence returns the candidate's source sentence only when it occurs
// verbatim in the transcript content. Extractors paraphrase sometimes; a
// paraphrased anchor is worse than none.
func anchorSentence(content string, source *string) *string {
	if source == nil {
		return nil
	}
	s := strings.TrimSpace(*source)
	if s == "" || !strings.Contains(content, s) {
		return nil
	}
	return &s
}

// speakerOf finds the speaker who uttered the given sentence, if any.
func speakerOf(sentences []Sentence, text string) *string {
	for _, sent := range sentences {
		if sent.Text == text {
			return sent.Speaker
		}
	}
	return nil
}
