package commander

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// resultExt is the fixed extension the commander names persisted results
// files with. The wire protocol carries only a key and a base64 blob, not a
// filename, so there is nothing upstream to pick this from; a fixed
// extension keeps the canonical results file trivially locatable.
const resultExt = ".txt"

// persistResult decodes b64 and writes it to resultsDir/<key>.txt, plus a
// compressed zstd audit copy alongside it. The canonical file's bytes are
// exactly base64-decode(b64); invariant §8.2 is checked against that file,
// not the compressed copy.
func persistResult(resultsDir, key, b64 string) error {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("commander: decode result for %s: %w", key, err)
	}

	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("commander: mkdir %s: %w", resultsDir, err)
	}

	canonical := filepath.Join(resultsDir, key+resultExt)
	if err := os.WriteFile(canonical, raw, 0o644); err != nil {
		return fmt.Errorf("commander: write %s: %w", canonical, err)
	}

	// The compressed audit copy is a convenience, not part of any
	// invariant; failure here does not demote the key to a failure.
	_ = writeCompressedAudit(canonical+".zst", raw)
	return nil
}

func writeCompressedAudit(path string, raw []byte) error {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("commander: new zstd writer: %w", err)
	}
	defer enc.Close()

	compressed := enc.EncodeAll(raw, nil)
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("commander: write %s: %w", path, err)
	}
	return nil
}
