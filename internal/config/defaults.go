package config

const (
	defaultRawDir        = "data/raw"
	defaultProcessedDir  = "data/processed"
	defaultChunksDir     = "data/chunks"
	defaultRefsDir       = "data/refs"
	defaultAlignDir      = "data/align"
	defaultStateDir      = "~/.local/share/vadscribe"
	defaultLogDir        = "~/.local/share/vadscribe/logs"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultSampleRate    = 16000
	defaultNormalizeDBFS = -20.0

	defaultVADMode       = 2
	defaultFrameMs       = 10
	defaultSmoothFrameMs = 10
	defaultPadSec        = 0.15
	defaultMaxChunkSec   = 30.0
	defaultMinSpeechSec  = 0.30

	defaultASRBackend     = BackendOpenAI
	defaultOpenAIModel    = "whisper-1"
	defaultWhisperXModel  = "large-v3"
	defaultLanguage       = "en"
	defaultMergeGapSec    = 0.5
	defaultMergeMaxSec    = 30.0
	defaultASRTimeoutSecs = 300

	defaultMFABinary     = "mfa"
	defaultAcousticModel = "english_mfa"
	defaultDictionary    = "english_us_arpa"
	defaultBeam          = 10
	defaultRetryBeam     = 40

	defaultFileWorkers = 2
)

// ASR backend identifiers.
const (
	BackendOpenAI   = "openai"
	BackendWhisperX = "whisperx"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RawDir:       defaultRawDir,
			ProcessedDir: defaultProcessedDir,
			ChunksDir:    defaultChunksDir,
			RefsDir:      defaultRefsDir,
			AlignDir:     defaultAlignDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		Audio: Audio{
			TargetSampleRate: defaultSampleRate,
			NormalizeDBFS:    defaultNormalizeDBFS,
		},
		VAD: VAD{
			Mode:          defaultVADMode,
			FrameMs:       defaultFrameMs,
			SmoothFrameMs: defaultSmoothFrameMs,
			PadSec:        defaultPadSec,
			MaxChunkSec:   defaultMaxChunkSec,
			MinSpeechSec:  defaultMinSpeechSec,
		},
		ASR: ASR{
			Backend:        defaultASRBackend,
			Language:       defaultLanguage,
			MergeGapSec:    defaultMergeGapSec,
			MergeMaxSec:    defaultMergeMaxSec,
			TimeoutSeconds: defaultASRTimeoutSecs,
		},
		Align: Align{
			MFABinary:     defaultMFABinary,
			AcousticModel: defaultAcousticModel,
			Dictionary:    defaultDictionary,
			Beam:          defaultBeam,
			RetryBeam:     defaultRetryBeam,
		},
		Workers: Workers{Files: defaultFileWorkers},
		Logging: Logging{Format: defaultLogFormat, Level: defaultLogLevel},
	}
}
