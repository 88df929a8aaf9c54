package sqlite_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/cloudrest/adapters/clock"
	"github.com/artpar/cloudrest/adapters/hasher"
	"github.com/artpar/cloudrest/adapters/sqlite"
	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/invoke"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/target"
	"github.com/artpar/cloudrest/domain"
	"github.com/artpar/cloudrest/domain/storage"
)

var start = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cloudrest-test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupDriver(t *testing.T) *sqlite.StorageDriver {
	t.Helper()
	return sqlite.NewStorageDriver(setupTestDB(t), hasher.Fake{Digest: "digest"}, clock.NewStepping(start, time.Second))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Errorf("applied migrations = %d, want 1", n)
	}
}

// -----------------------------------------------------------------------------
// Containers
// -----------------------------------------------------------------------------

func TestStorageDriver_CreateAndGetContainer(t *testing.T) {
	d := setupDriver(t)
	ctx := context.Background()

	c, err := d.CreateContainer(ctx, "photos")
	if err != nil {
		t.Fatalf("create container: %v", err)
	}
	if c.Name != "photos" {
		t.Errorf("Name = %s, want photos", c.Name)
	}
	if c.Extra["created_at"] != "2024-01-02T03:04:05Z" {
		t.Errorf("created_at = %v", c.Extra["created_at"])
	}

	got, err := d.GetContainer(ctx, "photos")
	if err != nil {
		t.Fatalf("get container: %v", err)
	}
	if got.Name != "photos" || got.Extra["object_count"] != 0 {
		t.Errorf("got %+v", got)
	}

	if _, err := d.CreateContainer(ctx, "photos"); !errors.Is(err, storage.ErrContainerAlreadyExists) {
		t.Errorf("duplicate create error = %v, want ErrContainerAlreadyExists", err)
	}
	if _, err := d.GetContainer(ctx, "missing"); !errors.Is(err, storage.ErrContainerDoesNotExist) {
		t.Errorf("get missing error = %v, want ErrContainerDoesNotExist", err)
	}
}

func TestStorageDriver_ListContainers(t *testing.T) {
	d := setupDriver(t)
	ctx := context.Background()

	list, err := d.ListContainers(ctx)
	if err != nil {
		t.Fatalf("list containers: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no containers, got %d", len(list))
	}

	for _, name := range []string{"b", "a", "c"} {
		if _, err := d.CreateContainer(ctx, name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	list, _ = d.ListContainers(ctx)
	if len(list) != 3 || list[0].Name != "a" || list[2].Name != "c" {
		t.Errorf("containers not sorted by name: %+v", list)
	}
}

func TestStorageDriver_DeleteContainer(t *testing.T) {
	d := setupDriver(t)
	ctx := context.Background()

	c, _ := d.CreateContainer(ctx, "docs")
	if _, err := d.UploadObject(ctx, c, "a.txt", "hello", nil); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := d.DeleteContainer(ctx, c); !errors.Is(err, storage.ErrContainerIsNotEmpty) {
		t.Fatalf("delete non-empty error = %v, want ErrContainerIsNotEmpty", err)
	}

	obj, _ := d.GetObject(ctx, "docs", "a.txt")
	if _, err := d.DeleteObject(ctx, obj); err != nil {
		t.Fatalf("delete object: %v", err)
	}
	ok, err := d.DeleteContainer(ctx, c)
	if err != nil || !ok {
		t.Fatalf("delete container = %v, %v", ok, err)
	}
	if _, err := d.DeleteContainer(ctx, c); !errors.Is(err, storage.ErrContainerDoesNotExist) {
		t.Errorf("second delete error = %v, want ErrContainerDoesNotExist", err)
	}
}

// -----------------------------------------------------------------------------
// Objects
// -----------------------------------------------------------------------------

func TestStorageDriver_UploadAndDownload(t *testing.T) {
	d := setupDriver(t)
	ctx := context.Background()
	c, _ := d.CreateContainer(ctx, "docs")

	obj, err := d.UploadObject(ctx, c, "readme.md", "# hi", map[string]any{
		"content_type": "text/markdown",
		"meta_data":    map[string]any{"owner": "ops"},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if obj.Size != 4 || obj.Hash != "digest" || obj.ContentType != "text/markdown" || obj.ContainerName != "docs" {
		t.Errorf("uploaded object = %+v", obj)
	}

	got, err := d.GetObject(ctx, "docs", "readme.md")
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	meta, _ := got.Extra["meta_data"].(map[string]any)
	if meta["owner"] != "ops" {
		t.Errorf("meta_data = %v", got.Extra["meta_data"])
	}

	data, err := d.DownloadObject(ctx, got)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if data != "# hi" {
		t.Errorf("data = %q, want %q", data, "# hi")
	}
}

func TestStorageDriver_UploadReplaces(t *testing.T) {
	d := setupDriver(t)
	ctx := context.Background()
	c, _ := d.CreateContainer(ctx, "docs")

	d.UploadObject(ctx, c, "a.txt", "one", nil)
	d.UploadObject(ctx, c, "a.txt", "three", nil)

	objs, err := d.ListContainerObjects(ctx, c)
	if err != nil {
		t.Fatalf("list objects: %v", err)
	}
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	if objs[0].Size != 5 || objs[0].ContentType != "application/octet-stream" {
		t.Errorf("object = %+v", objs[0])
	}
}

func TestStorageDriver_ObjectNotFound(t *testing.T) {
	d := setupDriver(t)
	ctx := context.Background()
	d.CreateContainer(ctx, "docs")

	if _, err := d.GetObject(ctx, "docs", "nope"); !errors.Is(err, storage.ErrObjectDoesNotExist) {
		t.Errorf("get error = %v, want ErrObjectDoesNotExist", err)
	}
	if _, err := d.GetObject(ctx, "nope", "nope"); !errors.Is(err, storage.ErrContainerDoesNotExist) {
		t.Errorf("get error = %v, want ErrContainerDoesNotExist", err)
	}
	missing := &storage.Object{Name: "nope", ContainerName: "docs"}
	if _, err := d.DownloadObject(ctx, missing); !errors.Is(err, storage.ErrObjectDoesNotExist) {
		t.Errorf("download error = %v, want ErrObjectDoesNotExist", err)
	}
	if _, err := d.DeleteObject(ctx, missing); !errors.Is(err, storage.ErrObjectDoesNotExist) {
		t.Errorf("delete error = %v, want ErrObjectDoesNotExist", err)
	}
}

func TestStorageDriver_ClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	d := sqlite.NewStorageDriver(db, hasher.Blake2b{}, clock.UTC{})
	db.Close()

	_, err := d.ListContainers(context.Background())
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
	if pe.Provider != sqlite.ProviderID {
		t.Errorf("Provider = %s, want %s", pe.Provider, sqlite.ProviderID)
	}
}

// -----------------------------------------------------------------------------
// Invocation through the driver type
// -----------------------------------------------------------------------------

func newCache(t *testing.T) *method.Cache {
	t.Helper()
	r := entry.New()
	if err := storage.RegisterEntries(r); err != nil {
		t.Fatalf("register entries: %v", err)
	}
	r.Freeze()
	return method.NewCache(r)
}

func invokeJSON(t *testing.T, c *method.Cache, typ *target.Type, d any, name, body string) any {
	t.Helper()
	s, err := c.Get(typ, name)
	if err != nil {
		t.Fatalf("schema %s: %v", name, err)
	}
	out, err := invoke.Invoke(context.Background(), s, d, []byte(body))
	if err != nil {
		t.Fatalf("invoke %s: %v", name, err)
	}
	var v any
	if err := json.Unmarshal(out, &v); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return v
}

func TestDriverType_Invoke(t *testing.T) {
	t.Cleanup(func() { sqlite.CloseAll() })

	c := newCache(t)
	typ := sqlite.NewDriverType(sqlite.Options{
		DefaultPath: filepath.Join(t.TempDir(), "default.db"),
		Hasher:      hasher.Fake{Digest: "h"},
		Clock:       clock.NewStepping(start, time.Second),
	})

	ctor, err := c.Get(typ, target.Constructor)
	if err != nil {
		t.Fatalf("constructor schema: %v", err)
	}
	d, err := invoke.Call(context.Background(), ctor, nil, entry.Document{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	invokeJSON(t, c, typ, d, "create_container", `{"container_name": "media"}`)
	obj := invokeJSON(t, c, typ, d, "upload_object",
		`{"container_name": "media", "object_name": "a.txt", "data": "abc", "extra": {"content_type": "text/plain"}}`).(map[string]any)
	if obj["size"] != float64(3) || obj["hash"] != "h" || obj["content_type"] != "text/plain" || obj["container"] != "media" {
		t.Errorf("uploaded object = %v", obj)
	}

	data := invokeJSON(t, c, typ, d, "download_object", `{"container_name": "media", "object_name": "a.txt"}`)
	if data != "abc" {
		t.Errorf("download = %v, want abc", data)
	}

	objs := invokeJSON(t, c, typ, d, "list_container_objects", `{"container_name": "media"}`).([]any)
	if len(objs) != 1 {
		t.Errorf("expected 1 object, got %d", len(objs))
	}

	// A second driver on the same path sees the same data.
	d2, err := invoke.Call(context.Background(), ctor, nil, entry.Document{})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	containers := invokeJSON(t, c, typ, d2, "list_containers", "").([]any)
	if len(containers) != 1 {
		t.Errorf("expected 1 container, got %d", len(containers))
	}
}

func TestDriverType_NoPath(t *testing.T) {
	c := newCache(t)
	typ := sqlite.NewDriverType(sqlite.Options{})

	ctor, err := c.Get(typ, target.Constructor)
	if err != nil {
		t.Fatalf("constructor schema: %v", err)
	}
	_, err = invoke.Call(context.Background(), ctor, nil, entry.Document{})
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v, want ProviderError", err)
	}
}

func TestResolvePath(t *testing.T) {
	def := filepath.Join("/var/lib/cloudrest", "storage.db")

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", def, false},
		{"tenant.db", "/var/lib/cloudrest/tenant.db", false},
		{"team-a_1.sqlite", "/var/lib/cloudrest/team-a_1.sqlite", false},
		{"../escape.db", "", true},
		{"..", "", true},
		{".hidden.db", "", true},
		{"/tmp/abs.db", "", true},
		{"sub/dir.db", "", true},
		{`sub\dir.db`, "", true},
		{"x.db?mode=memory", "", true},
		{"x.db#frag", "", true},
		{":memory:", "", true},
		{"file:x.db", "", true},
		{"x%2Fy.db", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sqlite.ResolvePath(def, tt.name)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidCredential) {
					t.Fatalf("ResolvePath(%q) error = %v, want ErrInvalidCredential", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePath(%q) error: %v", tt.name, err)
			}
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("ResolvePath(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestOpen_RejectsDSNOptions(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "x.db?mode=memory"), "x.db#a"} {
		if db, err := sqlite.Open(path); err == nil {
			db.Close()
			t.Errorf("Open(%q) should fail", path)
		}
	}
}

func TestDriverType_NamedDatabase(t *testing.T) {
	sqlite.CloseAll()
	t.Cleanup(func() { sqlite.CloseAll() })

	dir := t.TempDir()
	c := newCache(t)
	typ := sqlite.NewDriverType(sqlite.Options{
		DefaultPath: filepath.Join(dir, "default.db"),
		Hasher:      hasher.Fake{Digest: "h"},
		Clock:       clock.NewStepping(start, time.Second),
	})
	ctor, err := c.Get(typ, target.Constructor)
	if err != nil {
		t.Fatalf("constructor schema: %v", err)
	}

	d, err := invoke.Call(context.Background(), ctor, nil, entry.Document{"path": "tenant.db"})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	invokeJSON(t, c, typ, d, "create_container", `{"container_name": "media"}`)
	if _, err := os.Stat(filepath.Join(dir, "tenant.db")); err != nil {
		t.Errorf("named database not created in the storage directory: %v", err)
	}

	outside := t.TempDir()
	for _, name := range []string{filepath.Join(outside, "evil.db"), "../evil.db", "evil.db?_journal_mode=OFF"} {
		_, err := invoke.Call(context.Background(), ctor, nil, entry.Document{"path": name})
		if !errors.Is(err, domain.ErrInvalidCredential) {
			t.Errorf("path %q: error = %v, want ErrInvalidCredential", name, err)
		}
	}
	if entries, _ := os.ReadDir(outside); len(entries) != 0 {
		t.Errorf("files created outside the storage directory: %v", entries)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "evil.db")); err == nil {
		t.Error("database created in the parent of the storage directory")
	}
}

func TestDriverType_MaxDatabases(t *testing.T) {
	sqlite.CloseAll()
	t.Cleanup(func() { sqlite.CloseAll() })

	c := newCache(t)
	typ := sqlite.NewDriverType(sqlite.Options{
		DefaultPath:  filepath.Join(t.TempDir(), "default.db"),
		MaxDatabases: 2,
	})
	ctor, err := c.Get(typ, target.Constructor)
	if err != nil {
		t.Fatalf("constructor schema: %v", err)
	}

	for _, name := range []string{"", "a.db", "a.db", ""} {
		doc := entry.Document{}
		if name != "" {
			doc["path"] = name
		}
		if _, err := invoke.Call(context.Background(), ctor, nil, doc); err != nil {
			t.Fatalf("construct %q: %v", name, err)
		}
	}

	_, err = invoke.Call(context.Background(), ctor, nil, entry.Document{"path": "b.db"})
	if !errors.Is(err, sqlite.ErrTooManyDatabases) {
		t.Errorf("error = %v, want ErrTooManyDatabases", err)
	}
}
