package target_test

import (
	"reflect"
	"testing"

	"github.com/artpar/cloudrest/core/target"
)

func newHierarchy() (base, child *target.Type) {
	base = target.NewType("NodeDriver", nil).
		Define(target.Method{Name: "list_nodes", Doc: "List nodes.\n@rtype: C{list}"}).
		Define(target.Method{Name: "reboot_node", Doc: "Reboot.\n@rtype: C{bool}"}).
		Define(target.Method{Name: "_private", Doc: "hidden"})
	child = target.NewType("DummyNodeDriver", base).
		Define(target.Method{Name: target.Constructor, Doc: "ctor"}).
		Define(target.Method{Name: "list_nodes", Doc: "Dummy list.\n@rtype: C{list}"}).
		Define(target.Method{Name: "ex_rename_node", Doc: "Rename."})
	return base, child
}

func TestType_Lookup(t *testing.T) {
	base, child := newHierarchy()

	tests := []struct {
		name     string
		method   string
		wantType *target.Type
		wantDoc  string
		found    bool
	}{
		{"overridden", "list_nodes", child, "Dummy list.\n@rtype: C{list}", true},
		{"inherited", "reboot_node", base, "Reboot.\n@rtype: C{bool}", true},
		{"own", "ex_rename_node", child, "Rename.", true},
		{"missing", "destroy_node", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, decl, ok := child.Lookup(tt.method)
			if ok != tt.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.method, ok, tt.found)
			}
			if !ok {
				return
			}
			if decl != tt.wantType {
				t.Errorf("declaring type = %s, want %s", decl.Name, tt.wantType.Name)
			}
			if m.Doc != tt.wantDoc {
				t.Errorf("Doc = %q, want %q", m.Doc, tt.wantDoc)
			}
		})
	}
}

func TestType_Methods(t *testing.T) {
	_, child := newHierarchy()

	got := child.Methods()
	want := []string{"ex_rename_node", "list_nodes", "reboot_node"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Methods() = %v, want %v", got, want)
	}
}

func TestType_ResolveDoc(t *testing.T) {
	base, child := newHierarchy()

	doc, err := child.ResolveDoc("NodeDriver", "list_nodes")
	if err != nil {
		t.Fatalf("ResolveDoc error: %v", err)
	}
	if doc != "List nodes.\n@rtype: C{list}" {
		t.Errorf("ResolveDoc returned the overriding doc: %q", doc)
	}

	if _, err := base.ResolveDoc("DummyNodeDriver", "list_nodes"); err == nil {
		t.Error("expected error resolving a descendant from its parent")
	}
	if _, err := child.ResolveDoc("NodeDriver", "ex_rename_node"); err == nil {
		t.Error("expected error for method missing on the ancestor")
	}
}

func TestType_Is(t *testing.T) {
	base, child := newHierarchy()
	other := target.NewType("DNSDriver", nil)

	if !child.Is(base) {
		t.Error("child should descend from base")
	}
	if base.Is(child) {
		t.Error("base should not descend from child")
	}
	if child.Is(other) {
		t.Error("child should not descend from an unrelated type")
	}
}

func TestType_DefineDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate method")
		}
	}()
	target.NewType("T", nil).
		Define(target.Method{Name: "m"}).
		Define(target.Method{Name: "m"})
}

func TestParamConstructors(t *testing.T) {
	if p := target.Required("name"); p.HasDefault {
		t.Error("Required param should not have a default")
	}
	p := target.Optional("location", nil)
	if !p.HasDefault || p.Default != nil {
		t.Errorf("Optional(nil) = %+v", p)
	}
}
