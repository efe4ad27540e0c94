package report

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Marshal encodes r as canonical JSON (RFC 8785), so equal results always
// produce identical bytes.
func Marshal(r CheckResult) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding check result: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing check result: %w", err)
	}
	return out, nil
}

// Unmarshal decodes a serialized result after validating it against Schema.
func Unmarshal(data []byte) (CheckResult, error) {
	if err := Validate(data); err != nil {
		return CheckResult{}, err
	}
	var r CheckResult
	if err := json.Unmarshal(data, &r); err != nil {
		return CheckResult{}, fmt.Errorf("decoding check result: %w", err)
	}
	return r, nil
}
