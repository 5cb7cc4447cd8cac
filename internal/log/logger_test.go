package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithComponent_addsComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str(FieldComponent, "refcache").Logger()
	l.Info().Str(FieldMount, "page").Msg("probe")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if got[FieldComponent] != "refcache" {
		t.Errorf("component got %v, want refcache", got[FieldComponent])
	}
	if got[FieldMount] != "page" {
		t.Errorf("mount got %v, want page", got[FieldMount])
	}
}

func TestBase_isConfigured(t *testing.T) {
	l := WithComponent("test")
	if l.GetLevel() == zerolog.Disabled {
		t.Fatalf("logger is disabled")
	}
}
