// Package tts synthesizes narration audio.
//
// Synthesizer is the collaborator the audio stage depends on. The Gemini
// provider, the default, returns raw PCM that is wrapped as WAV; the OpenAI
// provider streams WAV from the speech endpoint. Retry wraps either with the
// bounded attempt and cooldown policy used during builds.
package tts
