package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("FLEETSYNC_PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${FLEETSYNC_PRESENT} b=${FLEETSYNC_MISSING} c=${FLEETSYNC_MISSING}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("error = %v, want ErrMissingEnv", err)
	}
	if strings.Count(err.Error(), "FLEETSYNC_MISSING") != 1 {
		t.Fatalf("expected missing var named once, got: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}
