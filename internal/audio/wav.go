package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var (
	// ErrNotWAV reports a file that is not a RIFF/WAVE container.
	ErrNotWAV = errors.New("not a wav file")
	// ErrUnsupportedFormat reports audio the chunker cannot consume: more than
	// one channel, the wrong sample rate, or a non-PCM encoding.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Clip is decoded mono audio.
type Clip struct {
	SampleRate int
	Samples    []int16
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// ReadWAV decodes a mono PCM WAV file. When wantRate is positive the file's
// sample rate must match it.
func ReadWAV(path string, wantRate int) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("%s: %w", path, ErrNotWAV)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return Clip{}, fmt.Errorf("%s: %w: wav format tag %d", path, ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	if dec.NumChans != 1 {
		return Clip{}, fmt.Errorf("%s: %w: %d channels, want mono", path, ErrUnsupportedFormat, dec.NumChans)
	}
	if wantRate > 0 && int(dec.SampleRate) != wantRate {
		return Clip{}, fmt.Errorf("%s: %w: %d Hz, want %d Hz", path, ErrUnsupportedFormat, dec.SampleRate, wantRate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Clip{SampleRate: int(dec.SampleRate), Samples: toInt16(buf)}, nil
}

func toInt16(buf *goaudio.IntBuffer) []int16 {
	out := make([]int16, len(buf.Data))
	if buf.SourceBitDepth == 16 {
		for i, v := range buf.Data {
			out[i] = int16(v)
		}
		return out
	}
	floats := buf.AsFloat32Buffer()
	for i, v := range floats.Data {
		out[i] = FloatToInt16(float64(v))
	}
	return out
}

// WriteWAV encodes samples as 16-bit mono PCM. The file is written to a
// temporary name and renamed into place.
func WriteWAV(path string, sampleRate int, samples []int16) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	enc := wav.NewEncoder(tmp, sampleRate, 16, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err = enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err = enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
