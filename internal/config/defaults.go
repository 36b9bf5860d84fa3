package config

const (
	defaultSourceDir           = "~/Downloads"
	defaultLogDir              = "~/.local/share/mediascribe/logs"
	defaultStateDir            = "~/.local/share/mediascribe"
	defaultChunkDurationMS     = 3000
	defaultHeadroomDB          = -1.0
	defaultLanguage            = "en"
	defaultWhisperXModel       = "large-v3"
	defaultWhisperXVADMethod   = "silero"
	defaultCloudBaseURL        = "https://api.openai.com/v1"
	defaultCloudModel          = "whisper-1"
	defaultCloudTimeoutSeconds = 300
	defaultCloudRetryAttempts  = 3
	defaultCombineOutputName   = "combined"
	defaultWatchSettleSeconds  = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

var (
	defaultMediaExtensions = []string{".m4a", ".mp3"}
	defaultNoteExtensions  = []string{".md"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Scan: Scan{
			Extensions: append([]string(nil), defaultMediaExtensions...),
		},
		Transcribe: Transcribe{
			Engine:              EngineWhisperX,
			OutputMode:          ModeText,
			CategoryByPrefix:    true,
			ChunkDurationMS:     defaultChunkDurationMS,
			Normalize:           true,
			NormalizeHeadroomDB: defaultHeadroomDB,
			IntermediateFormat:  FormatWAV,
			Language:            defaultLanguage,
			CombineAfter:        true,
			WatchSettleSeconds:  defaultWatchSettleSeconds,
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
		},
		Cloud: Cloud{
			BaseURL:        defaultCloudBaseURL,
			Model:          defaultCloudModel,
			TimeoutSeconds: defaultCloudTimeoutSeconds,
			RetryAttempts:  defaultCloudRetryAttempts,
		},
		Combine: Combine{
			OutputName: defaultCombineOutputName,
			Recursive:  true,
		},
		Tags: Tags{
			Extensions: append([]string(nil), defaultNoteExtensions...),
		},
		History: History{
			Enabled: true,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			UVX:     "uvx",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
