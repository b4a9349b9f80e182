package generate

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an OPIc (Oral Proficiency Interview - computer) coach helping a Korean learner reach the IH to AL level.

Rules:
- Use natural, spoken English of the kind a confident speaker uses in an interview.
- Korean text must be natural, everyday Korean.
- Keep every item self-contained. No numbering, no markdown.
- Do not repeat any item from the "already in the library" list.`

// Topics are the interview categories questions are drawn from.
var Topics = []string{
	"Hobbies (Music, Movies, Parks)",
	"Daily Life (Home, Grocery, Routine)",
	"Past Experiences (Memorable trip, Childhood)",
	"Roleplay (Calling a travel agency, Booking a hotel)",
	"Comparison (Past vs Present technology, Different types of houses)",
	"Problems/Situations (Lost phone, Broken appliance)",
}

// FallbackQuestion is used when the provider returns an empty question.
const FallbackQuestion = "Tell me about the house you lived in as a child."

func questionMessage(topic string) string {
	var b strings.Builder
	b.WriteString("Generate a highly realistic OPIc interview question.\n")
	fmt.Fprintf(&b, "Category: %s\n", topic)
	b.WriteString("Level: IH to AL target.\n")
	b.WriteString("Provide the question exactly as an interviewer would say it in English.")
	return b.String()
}

func vocabMessage(count int, existing string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a list of %d high-frequency OPIc vocabulary items, idioms, or colloquial expressions ", count)
	b.WriteString(`(e.g., "breathtaking", "get some fresh air", "hit the gym", "a stone's throw away").`)
	b.WriteString("\nGive each English word with its meaning in Korean.")
	b.WriteString("\nMake sure they are diverse and suitable for an IH/AL target level.")
	b.WriteString("\n\nAlready in the library:\n")
	b.WriteString(existing)
	return b.String()
}

func structureMessage(count int, existing string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d OPIc sentence structures (patterns). Focus on verbs and complex sentence starters.\n", count)
	b.WriteString("Give each pattern in Korean (e.g. ~하는 것이 기억에 남아요) and in English (e.g. It remains memorable that I...), ")
	b.WriteString("with two short example sentences.")
	b.WriteString("\n\nAlready in the library:\n")
	b.WriteString(existing)
	return b.String()
}

func samplesMessage(question string, count int, mastered []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %q\n", question)
	fmt.Fprintf(&b, "Provide %d natural Korean sample answers.", count)
	if len(mastered) > 0 {
		b.WriteString("\nThe student is comfortable with these structures: ")
		b.WriteString(strings.Join(mastered, ", "))
	}
	return b.String()
}

func scriptsMessage(native string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Korean Answer: %q\n", native)
	fmt.Fprintf(&b, "Create 3 English versions labelled %s, %s and %s, each with its logic flow.",
		LabelSimple, LabelNatural, LabelDetailed)
	return b.String()
}

func patternsMessage(scripts []string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these OPIc scripts and extract %d recurring useful sentence patterns.\n\n", count)
	b.WriteString(strings.Join(scripts, "\n---\n"))
	return b.String()
}

// excerpt shortens s to at most n runes.
func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
