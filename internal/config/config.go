// Package config loads the on-disk layout for a searchcore data root.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config mirrors the document_indexer.py config.json contract: a small set
// of paths relative to a data root, all of which must exist or be creatable
// before the engine starts.
type Config struct {
	DataDir          string `json:"data_dir"`
	IndexesDir       string `json:"indexes_dir"`
	BarrelsDir       string `json:"barrels_dir"`
	BarrelsBinaryDir string `json:"barrels_binary_dir"`
	LexiconFile      string `json:"lexicon_file"`
	ForwardIndexFile string `json:"forward_index_file"`
	BarrelLookupFile string `json:"barrel_lookup"`
	JSONData         string `json:"json_data"`
}

// Default returns the configuration used when no config.json is present,
// rooted at dir.
func Default(dir string) *Config {
	return &Config{
		DataDir:          dir,
		IndexesDir:       "indexes",
		BarrelsDir:       "barrels",
		BarrelsBinaryDir: "barrels_binary",
		LexiconFile:      "lexicon.json",
		ForwardIndexFile: "forward_index.txt",
		BarrelLookupFile: "barrel_lookup.json",
		JSONData:         "json_data",
	}
}

// Load reads config.json from dir, falling back to Default(dir) if the file
// does not exist.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(dir), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.DataDir = dir
	return &cfg, nil
}

// Indexes returns the absolute path to the indexes directory.
func (c *Config) Indexes() string { return filepath.Join(c.DataDir, c.IndexesDir) }

// Barrels returns the absolute path to the text-form barrels directory.
func (c *Config) Barrels() string { return filepath.Join(c.Indexes(), c.BarrelsDir) }

// BarrelsBinary returns the absolute path to the binary mirror directory.
func (c *Config) BarrelsBinary() string { return filepath.Join(c.Indexes(), c.BarrelsBinaryDir) }

// Embeddings returns the absolute path to the embeddings directory.
func (c *Config) Embeddings() string { return filepath.Join(c.Indexes(), "embeddings") }

// Lexicon returns the absolute path to the textual lexicon file.
func (c *Config) Lexicon() string { return filepath.Join(c.Indexes(), c.LexiconFile) }

// LexiconBinary returns the absolute path to the binary lexicon cache.
func (c *Config) LexiconBinary() string { return filepath.Join(c.Embeddings(), "lexicon.bin") }

// EmbeddingsVocab returns the absolute path to the embeddings vocabulary map.
func (c *Config) EmbeddingsVocab() string { return filepath.Join(c.Embeddings(), "vocab.json") }

// EmbeddingsBinary returns the absolute path to the embedding vector table.
func (c *Config) EmbeddingsBinary() string { return filepath.Join(c.Embeddings(), "embeddings.bin") }

// AutocompleteIndex returns the absolute path to the prefix autocomplete index.
func (c *Config) AutocompleteIndex() string { return filepath.Join(c.Embeddings(), "autocomplete.json") }

// NgramAutocompleteIndex returns the absolute path to the phrase autocomplete index.
func (c *Config) NgramAutocompleteIndex() string { return filepath.Join(c.Indexes(), "ngram_autocomplete.json") }

// ForwardIndex returns the absolute path to the forward index file.
func (c *Config) ForwardIndex() string { return filepath.Join(c.Indexes(), c.ForwardIndexFile) }

// BarrelLookup returns the absolute path to the barrel lookup table.
func (c *Config) BarrelLookup() string { return filepath.Join(c.Indexes(), c.BarrelLookupFile) }

// Metadata returns the absolute path to the document metadata file.
func (c *Config) Metadata() string { return filepath.Join(c.Indexes(), "document_metadata.json") }

// DocScores returns the absolute path to the document authority score file.
func (c *Config) DocScores() string { return filepath.Join(c.Indexes(), "doc_scores.json") }

// EnsureDirs creates every directory this config references.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Indexes(), c.Barrels(), c.BarrelsBinary(), c.Embeddings()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: mkdir %s: %w", dir, err)
		}
	}
	return nil
}
