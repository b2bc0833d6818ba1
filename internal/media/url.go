// Package media turns stored image paths into public URLs and moves validated uploads into storage.
package media

import "strings"

// URLBuilder joins relative storage paths onto the public base URL.
// Older rows may hold absolute URLs under a legacy host; those are recognised too.
type URLBuilder struct {
	base   string
	legacy []string
}

func NewURLBuilder(base string, legacy ...string) *URLBuilder {
	b := &URLBuilder{base: strings.TrimRight(base, "/")}
	for _, p := range legacy {
		if p = strings.TrimSpace(p); p != "" {
			b.legacy = append(b.legacy, strings.TrimRight(p, "/")+"/")
		}
	}
	return b
}

// URL returns the public URL for a stored path. Values under the current base or a
// legacy prefix are rebased onto the base; other absolute URLs pass through unchanged.
func (b *URLBuilder) URL(stored string) string {
	if stored == "" {
		return ""
	}
	rel := b.Relative(stored)
	if rel == "" {
		return stored
	}
	return b.base + "/" + rel
}

// URLPtr is URL for nullable columns; nil stays nil.
func (b *URLBuilder) URLPtr(stored *string) *string {
	if stored == nil || *stored == "" {
		return nil
	}
	u := b.URL(*stored)
	return &u
}

// URLs maps URL over a list, keeping order.
func (b *URLBuilder) URLs(stored []string) []string {
	out := make([]string, 0, len(stored))
	for _, s := range stored {
		out = append(out, b.URL(s))
	}
	return out
}

// Relative recovers the storage key from a stored value, stripping the current
// base or any legacy prefix. It returns "" for absolute URLs on foreign hosts.
func (b *URLBuilder) Relative(stored string) string {
	if strings.HasPrefix(stored, b.base+"/") {
		return strings.TrimPrefix(stored, b.base+"/")
	}
	for _, p := range b.legacy {
		if strings.HasPrefix(stored, p) {
			return strings.TrimPrefix(stored, p)
		}
	}
	if isAbsolute(stored) {
		return ""
	}
	return strings.TrimLeft(stored, "/")
}

func isAbsolute(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
