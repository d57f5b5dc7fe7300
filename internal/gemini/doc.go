// ABOUTME: Generative Language API client package
// ABOUTME: Chat sessions for spoken scripts and text-to-speech synthesis
// Package gemini talks to the Gemini API through google.golang.org/genai.
//
// A Session carries the system instruction and chat history explicitly; the
// caller creates one and passes it to every GenerateScript call, which opens
// a genai chat seeded with that history.
//
// Example:
//
//	client, err := gemini.NewClient(ctx, gemini.Config{APIKey: key})
//	session := gemini.NewSession(gemini.DefaultPersona)
//	script, err := client.GenerateScript(ctx, session, "Apa itu fotosintesis?")
//	speech, err := client.Synthesize(ctx, script)
package gemini
