package align

import (
	"path/filepath"

	"vadscribe/internal/config"
)

// Layout names the directories used under the align root.
type Layout struct {
	Root      string
	Corpus    string
	DictDir   string
	TextGrids string
	JSON      string
	JSONL     string
}

// NewLayout derives the standard layout under root.
func NewLayout(root string) Layout {
	return Layout{
		Root:      root,
		Corpus:    filepath.Join(root, "corpus"),
		DictDir:   filepath.Join(root, "dict"),
		TextGrids: filepath.Join(root, "textgrids"),
		JSON:      filepath.Join(root, "json"),
		JSONL:     filepath.Join(root, "alignments.jsonl"),
	}
}

// LayoutFromConfig uses paths.align_dir as the root.
func LayoutFromConfig(cfg *config.Config) Layout {
	return NewLayout(cfg.Paths.AlignDir)
}

// Lexicon returns the path of the local pronunciation lexicon.
func (l Layout) Lexicon() string {
	return filepath.Join(l.DictDir, "lexicon.txt")
}
