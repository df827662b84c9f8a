// Package recognize wraps speech recognizers behind a single contract: given
// a chunk WAV and its offset in the source recording, return a transcript
// Unit with absolute word timestamps, or nil when nothing was recognized.
//
// Two backends are provided. OpenAI talks to any OpenAI-compatible
// /audio/transcriptions endpoint with word granularity; WhisperX runs the
// whisperx CLI through uvx and reads its JSON output.
package recognize
