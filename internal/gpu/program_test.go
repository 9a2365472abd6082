//go:build !nogpu

package gpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/warp"
)

func TestEmbeddedShaderSources(t *testing.T) {
	tests := []struct {
		kind   string
		source string
	}{
		{KindWarp, warpShaderSource},
		{KindColorMatrix, colorMatrixShaderSource},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if tt.source == "" {
				t.Fatal("shader source is empty")
			}
			if !strings.Contains(tt.source, "@vertex") {
				t.Error("shader has no vertex entry point")
			}
			if !strings.Contains(tt.source, "@fragment") {
				t.Error("shader has no fragment entry point")
			}
		})
	}
}

func TestProgramCacheUnknownKind(t *testing.T) {
	cache := NewProgramCache()

	// Unknown kinds fail before any device work, so nil is safe here.
	_, err := cache.Get(nil, "bogus")
	if err == nil {
		t.Fatal("Get() with unknown kind succeeded")
	}
	if !errors.Is(err, warp.ErrRenderBackendUnavailable) {
		t.Errorf("error = %v, want wrapped ErrRenderBackendUnavailable", err)
	}

	// A failed compile must not be cached; the next access retries.
	if cache.Len() != 0 {
		t.Errorf("cache holds %d programs after failed compile, want 0", cache.Len())
	}
	if _, err := cache.Get(nil, "bogus"); err == nil {
		t.Error("retry after failed compile succeeded")
	}
}
