package scenenorm

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DefaultFileName is the name the training loader looks for inside a
// dataset directory.
const DefaultFileName = "normalization.json"

// maxFileSize caps how much of a normalization file we are willing to
// read. The legitimate payload is two fields; anything larger is noise.
const maxFileSize = 64 * 1024

// Save writes the record to path as the two-field JSON document consumed
// by the training loader. Parent directories are created as needed.
func Save(rec Record, path string) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("normalization file must have .json extension, got %q", ext)
	}

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal normalization: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return fmt.Errorf("create normalization dir: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, 0o644); err != nil {
		return fmt.Errorf("write normalization file: %w", err)
	}
	return nil
}

// Load reads a normalization record from path. The file must be a JSON
// document with exactly the translate/radius shape; the record is also
// validated so a corrupt or degenerate file cannot slip into a run.
func Load(path string) (Record, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Record{}, fmt.Errorf("normalization file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Record{}, fmt.Errorf("stat normalization file: %w", err)
	}
	if info.Size() > maxFileSize {
		return Record{}, fmt.Errorf("normalization file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Record{}, fmt.Errorf("read normalization file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse normalization file %s: %w", cleanPath, err)
	}
	if v := Validate(rec); !v.Valid {
		return Record{}, fmt.Errorf("%w in %s: %v", ErrDegenerateRadius, cleanPath, v.Issues)
	}
	return rec, nil
}

// Resolve implements the loader contract: prefer a persisted
// normalization file when one exists at path, otherwise compute from the
// camera positions actually present in this run. A missing or malformed
// file is a degradation path, not an error; it is logged and the local
// computation takes over.
func Resolve(path string, fallback []Vec3) (Record, error) {
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			rec, err := Load(path)
			if err == nil {
				log.Printf("scenenorm: using persisted normalization from %s (radius=%.4f)", path, rec.Radius)
				return rec, nil
			}
			log.Printf("scenenorm: ignoring unusable normalization file %s: %v", path, err)
		}
	}

	rec, err := ComputeValidated(fallback)
	if err != nil {
		return Record{}, fmt.Errorf("compute fallback normalization: %w", err)
	}
	log.Printf("scenenorm: computed normalization from %d local cameras (radius=%.4f)", len(fallback), rec.Radius)
	return rec, nil
}
