package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Digest is a SHA-256 hash.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func contentDigest(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// combineDigest is H(content || part1 || part2 ...); parts must come in a
// deterministic order.
func combineDigest(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// settingsDigest covers every option that changes the outcome of a check,
// so a cached result is never reused under different settings.
func settingsDigest(path string, opts Options) Digest {
	s := fmt.Sprintf("schema=%d;path=%s;max_depth=%d;max_diag=%d;inst=%t",
		resultCacheSchemaVersion, path, opts.MaxDepth, opts.MaxDiagnostics, opts.EmitInstantiations)
	return contentDigest([]byte(s))
}

func cacheKey(path string, content []byte, opts Options) Digest {
	return combineDigest(contentDigest(content), settingsDigest(path, opts))
}
