package batch

import (
	"time"

	"mediascribe/internal/config"
)

// Options controls one batch. Build it from config with OptionsFromConfig
// and apply CLI overrides on top.
type Options struct {
	Root       string
	Extensions []string
	Recursive  bool

	Mode        string
	Categorize  bool
	Format      string
	Normalize   bool
	HeadroomDB  float64
	ChunkWindow time.Duration
	WorkDir     string
	Engine      string

	Combine           bool
	CombineRecursive  bool
	CombineOutputName string
}

// OptionsFromConfig maps configuration to batch options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:              cfg.Paths.SourceDir,
		Extensions:        append([]string(nil), cfg.Scan.Extensions...),
		Recursive:         cfg.Scan.Recursive,
		Mode:              cfg.Transcribe.OutputMode,
		Categorize:        cfg.Transcribe.CategoryByPrefix,
		Format:            cfg.Transcribe.IntermediateFormat,
		Normalize:         cfg.Transcribe.Normalize,
		HeadroomDB:        cfg.Transcribe.NormalizeHeadroomDB,
		ChunkWindow:       time.Duration(cfg.ChunkDuration()) * time.Millisecond,
		WorkDir:           cfg.Paths.WorkDir,
		Engine:            cfg.Transcribe.Engine,
		Combine:           cfg.Transcribe.CombineAfter,
		CombineRecursive:  cfg.Combine.Recursive,
		CombineOutputName: cfg.Combine.OutputName,
	}
}

// CombineKind returns the combine kind matching the output mode.
func (o Options) CombineKind() string {
	if o.Mode == config.ModeSRT {
		return "srt"
	}
	return "txt"
}
