package answer

import "os"

// defaultPersona is used when no prompt file is configured or readable.
const defaultPersona = `You are a knowledgeable legal assistant specializing in Indian law. Answer questions using only the legal documents provided in the prompt. Cite the relevant sections and acts by name. If the provided documents do not contain the answer, say so plainly instead of speculating. Keep answers concise and in plain language a non-lawyer can follow.`

// LoadPersona reads the system prompt from path. A missing or unreadable
// file falls back to the built-in persona so the server always starts.
func LoadPersona(path string) string {
	if path == "" {
		return defaultPersona
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return defaultPersona
	}
	return string(data)
}
