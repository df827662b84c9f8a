// Package audio reads and writes the 16-bit mono PCM WAV files the chunker
// works on, and cuts sample ranges out of decoded audio.
package audio
