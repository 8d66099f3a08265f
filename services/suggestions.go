package services

import (
	"strings"

	"onboarding-assistant/models"
)

const maxSuggestions = 3

var sectionSuggestions = map[models.Section][]string{
	models.SectionProfile: {
		"What makes a good profile photo?",
		"How long should my bio be?",
		"How long does profile review take?",
	},
	models.SectionPersonalInfo: {
		"Which identity documents are accepted?",
		"Why did my identity verification fail?",
		"How long does verification take?",
	},
	models.SectionPayment: {
		"Which payout methods are supported?",
		"When do I receive my earnings?",
		"Do I need to provide tax information?",
	},
	models.SectionTours: {
		"How many photos does a tour listing need?",
		"How is the platform fee calculated?",
		"How long does listing review take?",
	},
	models.SectionCalendar: {
		"How do I block dates on my calendar?",
		"What is instant booking?",
		"Can I sync my calendar with other apps?",
	},
	models.SectionQuiz: {
		"What score do I need to pass the quiz?",
		"Can I retake the quiz if I fail?",
		"What topics does the quiz cover?",
	},
}

var defaultSuggestions = []string{
	"What are the onboarding steps?",
	"How long does onboarding take?",
	"When can I start accepting bookings?",
}

// SuggestionsFor returns up to 3 follow-up questions for a section, skipping
// suggestions that share a word longer than 3 letters with the user's message
// so we do not ask them what they just asked. If filtering leaves fewer than
// 3, the filtered-out pool tops the list back up.
func SuggestionsFor(section models.Section, userMessage string) []string {
	pool, ok := sectionSuggestions[section]
	if !ok {
		pool = defaultSuggestions
	}

	messageWords := significantWords(userMessage)

	var kept, dropped []string
	for _, suggestion := range pool {
		if sharesWord(suggestion, messageWords) {
			dropped = append(dropped, suggestion)
		} else {
			kept = append(kept, suggestion)
		}
	}

	for _, suggestion := range dropped {
		if len(kept) >= maxSuggestions {
			break
		}
		kept = append(kept, suggestion)
	}
	if len(kept) > maxSuggestions {
		kept = kept[:maxSuggestions]
	}
	return kept
}

func significantWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()\"'")
		if len(w) > 3 {
			words[w] = struct{}{}
		}
	}
	return words
}

func sharesWord(suggestion string, words map[string]struct{}) bool {
	for _, w := range strings.Fields(strings.ToLower(suggestion)) {
		w = strings.Trim(w, ".,;:!?()\"'")
		if len(w) <= 3 {
			continue
		}
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}
