package storage

import (
	"fmt"

	"github.com/nikhilbhutani/voicenews/internal/config"
)

// New builds the configured audio store.
func New(cfg config.AudioConfig) (Storage, error) {
	switch cfg.Storage {
	case "local", "":
		return NewLocalStorage(cfg.Dir)
	case "supabase":
		return NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown audio storage %q", cfg.Storage)
	}
}
