package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
)

func testView() View {
	return View{
		Name:     "node",
		Columns:  []string{"id", "name", "state"},
		Internal: []string{"extra"},
	}
}

func testRecords() []map[string]any {
	return []map[string]any{
		{"id": "1", "name": "dummy-1", "state": "running", "extra": map[string]any{"foo": "bar"}},
		{"id": "2", "name": "dummy-2", "state": "rebooting", "extra": map[string]any{}},
	}
}

func testDescription() method.Description {
	return method.Description{
		Name:        "create_node",
		Description: "Create a new node instance.\n\nThe node starts running.",
		Arguments: []entry.Argument{
			{Name: "name", Type: entry.TagString, Description: "Node name", Required: true},
			{Name: "size_id", Type: entry.TagString, Required: true},
			{Name: "ex_tags", Type: entry.TagMapping, Default: nil},
			{Name: "count", Type: entry.TagInteger, Default: 1},
		},
		Return: method.ReturnInfo{Type: "Node", Description: "The newly created node."},
	}
}

// ===========================================
// Registry Tests
// ===========================================

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.formatters == nil {
		t.Fatal("formatters map should be initialized")
	}
	if r.defaultFmt != "table" {
		t.Errorf("default format should be 'table', got %q", r.defaultFmt)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	f := NewTableFormatter()
	if err := r.Register(f); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := r.Register(f)
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("expected 'already registered' error, got: %v", err)
	}
}

func TestRegistry_GetAndDefault(t *testing.T) {
	r := NewRegistry()
	if r.Default() != nil {
		t.Fatal("expected nil default for empty registry")
	}

	_ = r.Register(NewJSONFormatter())
	if d := r.Default(); d == nil || d.Name() != "json" {
		t.Errorf("expected fallback to 'json', got %v", d)
	}

	_ = r.Register(NewTableFormatter())
	if d := r.Default(); d.Name() != "table" {
		t.Errorf("expected default 'table', got %q", d.Name())
	}

	if _, ok := r.Get("csv"); ok {
		t.Error("expected not to find 'csv' formatter")
	}
	if err := r.SetDefault("csv"); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' error, got: %v", err)
	}
	if err := r.SetDefault("json"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if d := r.Default(); d.Name() != "json" {
		t.Errorf("expected default 'json', got %q", d.Name())
	}
}

func TestDefaultRegistry(t *testing.T) {
	for _, name := range []string{"table", "json", "yaml"} {
		if _, ok := Get(name); !ok {
			t.Errorf("expected %q to be registered by init", name)
		}
	}
	if len(List()) != 3 {
		t.Errorf("expected 3 formatters, got %v", List())
	}
	if Default().Name() != "table" {
		t.Errorf("expected default 'table', got %q", Default().Name())
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewTableFormatter())

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_, _ = r.Get("table")
				_ = r.List()
				_ = r.Default()
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

// ===========================================
// TableFormatter Tests
// ===========================================

func TestTableFormatter_FormatList_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().FormatList(&buf, testView(), nil, FormatOptions{}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}
	if buf.String() != "No nodes found.\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTableFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().FormatList(&buf, testView(), testRecords(), FormatOptions{}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if strings.Join(strings.Fields(lines[0]), " ") != "ID NAME STATE" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "rebooting") {
		t.Errorf("row = %q", lines[2])
	}
	if strings.Contains(buf.String(), "foo") {
		t.Error("internal field should not be shown")
	}
}

func TestTableFormatter_FormatList_Options(t *testing.T) {
	var buf bytes.Buffer
	opts := FormatOptions{Columns: []string{"name"}, NoHeader: true}
	if err := NewTableFormatter().FormatList(&buf, testView(), testRecords(), opts); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}
	if buf.String() != "dummy-1\ndummy-2\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTableFormatter_FormatRecord(t *testing.T) {
	f := NewTableFormatter()

	var buf bytes.Buffer
	if err := f.FormatRecord(&buf, testView(), nil, FormatOptions{}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	if buf.String() != "No node found.\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	if err := f.FormatRecord(&buf, testView(), testRecords()[0], FormatOptions{}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Id:", "Name:", "dummy-1", "State:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTableFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().FormatError(&buf, errors.New("boom")); err != nil {
		t.Fatalf("FormatError failed: %v", err)
	}
	if buf.String() != "Error: boom\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTableFormatter_FormatValue(t *testing.T) {
	f := NewTableFormatter()

	tests := []struct {
		name     string
		val      any
		maxWidth int
		expected string
	}{
		{"nil", nil, 0, "-"},
		{"string", "hello", 0, "hello"},
		{"bool true", true, 0, "yes"},
		{"bool false", false, 0, "no"},
		{"bytes", []byte{1, 2, 3}, 0, "[binary]"},
		{"int", 7, 0, "7"},
		{"int64", int64(-3), 0, "-3"},
		{"float whole", float64(42), 0, "42"},
		{"float decimal", float64(3.14159), 0, "3.14"},
		{"strings", []string{"x-auth-user", "x-api-key"}, 0, "x-auth-user, x-api-key"},
		{"mapping", map[string]any{"a": 1}, 0, `{"a":1}`},
		{"truncate", "this is a very long string", 10, "this is..."},
		{"tiny width", "abcdef", 2, "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.formatValue(tt.val, tt.maxWidth)
			if got != tt.expected {
				t.Errorf("formatValue(%v, %d) = %q, want %q", tt.val, tt.maxWidth, got, tt.expected)
			}
		})
	}
}

func TestTableFormatter_FormatLabel(t *testing.T) {
	f := NewTableFormatter()

	tests := []struct {
		name     string
		expected string
	}{
		{"name", "Name"},
		{"friendly_name", "Friendly Name"},
		{"id", "Id"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.formatLabel(tt.name); got != tt.expected {
				t.Errorf("formatLabel(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

// ===========================================
// JSONFormatter Tests
// ===========================================

func TestJSONFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().FormatList(&buf, testView(), testRecords(), FormatOptions{}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}

	var out struct {
		Kind  string           `json:"kind"`
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Kind != "node" || out.Count != 2 {
		t.Errorf("kind = %q, count = %d", out.Kind, out.Count)
	}
	if _, ok := out.Data[0]["extra"]; ok {
		t.Error("internal field should be removed")
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestJSONFormatter_FormatList_CompactColumns(t *testing.T) {
	var buf bytes.Buffer
	opts := FormatOptions{Columns: []string{"id", "extra", "missing"}, Compact: true}
	if err := NewJSONFormatter().FormatList(&buf, testView(), testRecords()[:1], opts); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}
	want := `{"count":1,"data":[{"extra":{"foo":"bar"},"id":"1"}],"kind":"node"}` + "\n"
	if buf.String() != want {
		t.Errorf("got %s, want %s", buf.String(), want)
	}
}

func TestJSONFormatter_FormatRecord(t *testing.T) {
	f := NewJSONFormatter()

	var buf bytes.Buffer
	if err := f.FormatRecord(&buf, testView(), nil, FormatOptions{Compact: true}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	if buf.String() != `{"data":null,"kind":"node"}`+"\n" {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	if err := f.FormatRecord(&buf, testView(), testRecords()[1], FormatOptions{Compact: true}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"state":"rebooting"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestJSONFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	_ = NewJSONFormatter().FormatError(&buf, errors.New("boom"))

	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out["error"] != "boom" {
		t.Errorf("error = %q", out["error"])
	}
}

// ===========================================
// YAMLFormatter Tests
// ===========================================

func TestYAMLFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	if err := NewYAMLFormatter().FormatList(&buf, testView(), testRecords(), FormatOptions{}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}

	var out map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if out["kind"] != "node" || out["count"] != 2 {
		t.Errorf("out = %v", out)
	}
	data := out["data"].([]any)
	if _, ok := data[0].(map[string]any)["extra"]; ok {
		t.Error("internal field should be removed")
	}
}

func TestYAMLFormatter_FormatRecordAndError(t *testing.T) {
	f := NewYAMLFormatter()

	var buf bytes.Buffer
	if err := f.FormatRecord(&buf, testView(), testRecords()[0], FormatOptions{Columns: []string{"name"}}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	if buf.String() != "data:\n  name: dummy-1\nkind: node\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	_ = f.FormatError(&buf, errors.New("boom"))
	if buf.String() != "error: boom\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

// ===========================================
// Record Tests
// ===========================================

func TestProviderRecords(t *testing.T) {
	records := ProviderRecords([]provider.Summary{
		{ID: "DUMMY", FriendlyName: "Dummy Node Provider", Website: "http://example.com"},
	})
	if len(records) != 1 || records[0]["id"] != "DUMMY" || records[0]["friendly_name"] != "Dummy Node Provider" {
		t.Errorf("records = %v", records)
	}
}

func TestDriverRecord(t *testing.T) {
	info := &provider.Info{
		Name: "Dummy DNS Provider",
		Headers: []entry.Argument{
			{Name: "x-auth-user", Required: true},
			{Name: "x-api-key"},
		},
		SupportedMethods: map[string]method.Description{"list_zones": {}, "get_zone": {}},
	}
	rec := DriverRecord(info)

	headers := rec["headers"].([]string)
	if len(headers) != 2 || headers[0] != "x-auth-user" || headers[1] != "x-api-key?" {
		t.Errorf("headers = %v", headers)
	}
	if rec["methods"] != 2 {
		t.Errorf("methods = %v", rec["methods"])
	}
}

func TestMethodRecords(t *testing.T) {
	info := &provider.Info{SupportedMethods: map[string]method.Description{
		"reboot_node": {Name: "reboot_node"},
		"create_node": testDescription(),
	}}
	records := MethodRecords(info)
	if len(records) != 2 || records[0]["name"] != "create_node" {
		t.Fatalf("records not sorted: %v", records)
	}

	rec := records[0]
	if rec["summary"] != "Create a new node instance." {
		t.Errorf("summary = %q", rec["summary"])
	}
	if rec["returns"] != "Node" {
		t.Errorf("returns = %q", rec["returns"])
	}
	if args := rec["arguments"].([]map[string]any); len(args) != 4 || args[0]["required"] != true {
		t.Errorf("arguments = %v", args)
	}
}

func TestSignature(t *testing.T) {
	got := Signature(testDescription())
	want := "name: string, size_id: string, [ex_tags: mapping], [count: integer = 1]"
	if got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}
	if Signature(method.Description{}) != "" {
		t.Error("expected empty signature")
	}
}

func TestArgumentRecords_Table(t *testing.T) {
	var buf bytes.Buffer
	records := ArgumentRecords(testDescription())
	if err := NewTableFormatter().FormatList(&buf, ArgumentView, records, FormatOptions{}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"NAME", "DEFAULT", "size_id", "mapping", "Node name"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
