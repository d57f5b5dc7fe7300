// ABOUTME: Result types returned by the client
// ABOUTME: Synthesized speech as handed to the decoder
package gemini

// Speech is synthesized audio as returned by the service
type Speech struct {
	// Data is base64 encoded, either a container or headerless PCM
	Data     string
	MimeType string
}
