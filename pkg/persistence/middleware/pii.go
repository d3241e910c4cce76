package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/denizsokullu/redux-shrub/pkg/ports"
)

// Mask replaces masked values in stored snapshots.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks string values whose slot name
// matches one of the patterns. Only strings are masked, so masked snapshots still
// decode into their typed leaves.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, data []byte) error {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		// Not an object snapshot; nothing to mask.
		return m.next.Save(ctx, sessionID, data)
	}
	if !maskMap(doc, m.patterns) {
		return m.next.Save(ctx, sessionID, data)
	}

	masked, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode masked snapshot: %w", err)
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) ([]byte, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// maskMap masks in place and reports whether anything changed.
func maskMap(m map[string]any, patterns []*regexp.Regexp) bool {
	changed := false
	for k, v := range m {
		switch v := v.(type) {
		case string:
			if matchesAny(k, patterns) && v != Mask {
				m[k] = Mask
				changed = true
			}
		case map[string]any:
			if maskMap(v, patterns) {
				changed = true
			}
		}
	}
	return changed
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
