package gemini

// Instruction is the fixed prompt applied to every transcript. The generated
// text is used verbatim as the cleaned narrative.
const Instruction = "Turn this call transcript into a journal entry."

// BuildPrompt builds the user prompt for a single transcript. Shared by the
// other provider clients so every backend cleans the same way.
func BuildPrompt(transcript string) string {
	return Instruction + "\n\n" + transcript
}
