package topic

import (
	"github.com/LeonFTWANG/AIKG/internal/conversation"
	"github.com/LeonFTWANG/AIKG/internal/llm"
)

// State classifies a question against the conversation so far.
type State string

const (
	// StateNewTopic means the question names a canonical topic not yet
	// answered in structured form.
	StateNewTopic State = "NEW_TOPIC"

	// StateAlreadyCovered means the topic already received a structured
	// answer earlier in the conversation.
	StateAlreadyCovered State = "ALREADY_COVERED"

	// StateNoTopic means no canonical term appears in the question.
	StateNoTopic State = "NO_TOPIC"
)

// Decision is the outcome of evaluating a question: the detected topic
// (empty for StateNoTopic) and the answer mode to generate with.
type Decision struct {
	State State
	Topic string
	Mode  llm.Mode
}

// Covered reports whether some earlier exchange already answered the
// given topic in structured form. A message counts when its question
// detects the same topic and its answer was structured. The persisted
// mode tag decides structuredness when present; untagged legacy
// messages fall back to scanning the answer for structured JSON.
func Covered(topic string, history []conversation.Message) bool {
	if topic == "" {
		return false
	}
	for _, msg := range history {
		if !answeredStructured(msg) {
			continue
		}
		if Detect(msg.Question) == topic {
			return true
		}
	}
	return false
}

// Evaluate decides how to answer a question given the full conversation
// history. A fresh topic gets a structured answer; a covered topic and
// topic-free chatter get freeform text.
func Evaluate(question string, history []conversation.Message) Decision {
	detected := Detect(question)
	if detected == "" {
		return Decision{State: StateNoTopic, Mode: llm.ModeFreeform}
	}
	if Covered(detected, history) {
		return Decision{State: StateAlreadyCovered, Topic: detected, Mode: llm.ModeFreeform}
	}
	return Decision{State: StateNewTopic, Topic: detected, Mode: llm.ModeStructured}
}

func answeredStructured(msg conversation.Message) bool {
	if msg.Mode != llm.ModeUnknown {
		return msg.Mode.IsStructured()
	}
	return llm.HasStructuredMarkers(msg.Answer)
}
