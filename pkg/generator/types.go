package generator

import "time"

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.5-flash-image-preview"

	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 10 * time.Second
	DefaultMaxJitter      = time.Second

	// ResultMimeType はモデルが実際に返した MIME タイプに関わらず結果に付与するタイプです。
	ResultMimeType = "image/png"
)
