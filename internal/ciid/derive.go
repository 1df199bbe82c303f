package ciid

import (
	"context"
	"encoding/hex"
	"time"
)

// Identity is the outcome of deriving the identifier of one file.
type Identity struct {
	Path        string
	CapturedAt  time.Time
	Fingerprint []byte // nil when hashing is disabled
	Identifier  string
}

// FingerprintHex returns the fingerprint as lowercase hex, or "" without one.
func (id *Identity) FingerprintHex() string {
	if id.Fingerprint == nil {
		return ""
	}
	return hex.EncodeToString(id.Fingerprint)
}

// Deriver composes the resolver, fingerprinter and encoder into identifier derivation.
type Deriver struct {
	resolver      *Resolver
	fingerprinter *Fingerprinter
	encoder       *Encoder
	logger        Logger
	noHash        bool
}

// NewDeriver creates a Deriver. When noHash is true the fingerprinter is never
// called and may be nil.
func NewDeriver(resolver *Resolver, fingerprinter *Fingerprinter, encoder *Encoder, logger Logger, noHash bool) *Deriver {
	return &Deriver{
		resolver:      resolver,
		fingerprinter: fingerprinter,
		encoder:       encoder,
		logger:        logger,
		noHash:        noHash,
	}
}

// Derive resolves, fingerprints and encodes the file at path. The first
// failing stage is returned as a *StageError.
func (d *Deriver) Derive(ctx context.Context, path string) (*Identity, error) {
	capturedAt, err := d.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, &StageError{Stage: StageResolve, Path: path, Err: err}
	}

	var fp []byte
	if !d.noHash {
		fp, err = d.fingerprinter.Fingerprint(path)
		if err != nil {
			return nil, &StageError{Stage: StageFingerprint, Path: path, Err: err}
		}
	}

	identifier, err := d.encoder.Encode(capturedAt, fp)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Path: path, Err: err}
	}

	d.logger.Info("identifier derived", "path", path, "identifier", identifier)
	return &Identity{
		Path:        path,
		CapturedAt:  capturedAt,
		Fingerprint: fp,
		Identifier:  identifier,
	}, nil
}
