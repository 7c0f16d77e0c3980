package backend

import (
	"errors"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(
		Descriptor{ID: "github", Command: "github-mcp"},
		Descriptor{ID: "filesystem", Command: "mcp-fs", Transport: TransportStdio},
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry(
		Descriptor{ID: "github", Command: "github-mcp"},
		Descriptor{ID: "github", Command: "other"},
	)
	if !errors.Is(err, ErrDuplicateBackend) {
		t.Errorf("NewRegistry() error = %v, want ErrDuplicateBackend", err)
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
	}{
		{"missing ID", Descriptor{Command: "cmd"}},
		{"missing command", Descriptor{ID: "a"}},
		{"bad transport", Descriptor{ID: "a", Command: "cmd", Transport: "carrier-pigeon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.desc); err == nil {
				t.Errorf("NewRegistry(%+v) should fail", tt.desc)
			}
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg, err := NewRegistry(Descriptor{ID: "github", Command: "github-mcp"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	d, ok := reg.Resolve("github")
	if !ok {
		t.Fatal("Resolve() returned false for registered backend")
	}
	if d.ID != "github" {
		t.Errorf("Resolve().ID = %q, want %q", d.ID, "github")
	}
	if d.Transport != TransportStdio {
		t.Errorf("Resolve().Transport = %q, want default %q", d.Transport, TransportStdio)
	}

	if _, ok := reg.Resolve("nonexistent"); ok {
		t.Error("Resolve() should return false for unknown backend")
	}
}

func TestRegistry_IDs(t *testing.T) {
	reg, err := NewRegistry(
		Descriptor{ID: "c", Command: "cmd"},
		Descriptor{ID: "a", Command: "cmd"},
		Descriptor{ID: "b", Command: "cmd"},
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	ids := reg.IDs()
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("IDs() returned %d entries, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	// Mutating the returned slice must not affect the registry.
	ids[0] = "mutated"
	if got := reg.IDs()[0]; got != "a" {
		t.Errorf("IDs() after caller mutation = %q, want %q", got, "a")
	}
}
