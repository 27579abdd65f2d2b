package extraction

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// attributeOwner fills in a missing owner for a candidate. Two signals are
// tried in order:
//
//  1. The speaker of the anchored source sentence, when that sentence is a
//     first-person commitment ("I'll draft the doc").
//  2. A proper noun immediately preceding a commitment verb in the sentence
//     ("Dana will draft the doc").
//
// Neither signal firing leaves the owner nil, which downstream surfaces as
// an unowned action.
func attributeOwner(candidate *Candidate, sentences []Sentence) {
	if candidate.Owner != nil || candidate.SourceSentence == nil {
		return
	}
	sentence := *candidate.SourceSentence
	lower := strings.ToLower(sentence)

	if speaker := speakerOf(sentences, sentence); speaker != nil {
		for _, marker := range commitmentMarkers {
			if strings.Contains(lower, marker) {
				candidate.Owner = speaker
				return
			}
		}
	}

	if name := subjectBeforeCommitment(sentence); name != "" {
		candidate.Owner = &name
	}
}

// subjectBeforeCommitment finds "<ProperNoun> will/should/can ..." patterns
// using part-of-speech tags. Consecutive NNP tokens are joined so "Mary Ann
// will" yields "Mary Ann".
func subjectBeforeCommitment(sentence string) string {
	doc, err := prose.NewDocument(sentence, prose.WithExtraction(false))
	if err != nil {
		return ""
	}

	tokens := doc.Tokens()
	var nameParts []string
	for _, tok := range tokens {
		switch {
		case tok.Tag == "NNP":
			nameParts = append(nameParts, tok.Text)
		case len(nameParts) > 0 && isCommitmentVerb(tok.Text):
			return strings.Join(nameParts, " ")
		default:
			nameParts = nameParts[:0]
		}
	}
	return ""
}

func isCommitmentVerb(word string) bool {
	switch strings.ToLower(word) {
	case "will", "shall", "should", "can", "must", "'ll":
		return true
	}
	return false
}
