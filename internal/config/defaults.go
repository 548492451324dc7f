package config

// ApplyDefaults sets default values for any zero values in cfg.
// The embedding defaults match the all-MiniLM-L6-v2 model the vault indexer
// embeds with; changing dimensions without reindexing breaks dimension checks.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".loupe/vault.db"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = ".loupe/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 5
	}
	if cfg.Search.OverfetchFactor == 0 {
		cfg.Search.OverfetchFactor = 3
	}
	if cfg.Search.SnippetLength == 0 {
		cfg.Search.SnippetLength = 300
	}
}
