package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/artpar/cloudrest/adapters/clock"
	"github.com/artpar/cloudrest/adapters/hasher"
	"github.com/artpar/cloudrest/core/target"
	"github.com/artpar/cloudrest/domain"
	"github.com/artpar/cloudrest/domain/storage"
	"github.com/artpar/cloudrest/ports"
)

// ProviderID identifies the SQLite storage provider.
const ProviderID = "SQLITE"

const defaultContentType = "application/octet-stream"

// StorageDriver stores containers and objects in a SQLite database.
type StorageDriver struct {
	db     *DB
	hasher ports.ContentHasher
	clock  ports.Clock
}

// NewStorageDriver creates a driver on an open, migrated database.
func NewStorageDriver(db *DB, h ports.ContentHasher, c ports.Clock) *StorageDriver {
	return &StorageDriver{db: db, hasher: h, clock: c}
}

func providerError(message string, err error) error {
	return &domain.ProviderError{Provider: ProviderID, Message: message, Err: err}
}

func (d *StorageDriver) ListContainers(ctx context.Context) ([]*storage.Container, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT c.name, c.created_at, COUNT(o.name)
		FROM containers c LEFT JOIN objects o ON o.container = c.name
		GROUP BY c.name
		ORDER BY c.name
	`)
	if err != nil {
		return nil, providerError("list containers", err)
	}
	defer rows.Close()

	var out []*storage.Container
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, providerError("scan container", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, providerError("list containers", err)
	}
	if out == nil {
		out = []*storage.Container{}
	}
	return out, nil
}

func (d *StorageDriver) GetContainer(ctx context.Context, containerName string) (*storage.Container, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT c.name, c.created_at, COUNT(o.name)
		FROM containers c LEFT JOIN objects o ON o.container = c.name
		WHERE c.name = ?
		GROUP BY c.name
	`, containerName)
	c, err := scanContainer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrContainerDoesNotExist, containerName)
	}
	if err != nil {
		return nil, providerError("get container", err)
	}
	return c, nil
}

func (d *StorageDriver) CreateContainer(ctx context.Context, containerName string) (*storage.Container, error) {
	now := d.clock.Now().UTC().Format(time.RFC3339)
	_, err := d.db.ExecContext(ctx, "INSERT INTO containers (name, created_at) VALUES (?, ?)", containerName, now)
	if isConstraint(err) {
		return nil, fmt.Errorf("%w: %s", storage.ErrContainerAlreadyExists, containerName)
	}
	if err != nil {
		return nil, providerError("create container", err)
	}
	return &storage.Container{
		Name:  containerName,
		Extra: map[string]any{"created_at": now, "object_count": 0},
	}, nil
}

// DeleteContainer removes an empty container.
func (d *StorageDriver) DeleteContainer(ctx context.Context, container *storage.Container) (bool, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, providerError("begin transaction", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects WHERE container = ?", container.Name).Scan(&count); err != nil {
		return false, providerError("count objects", err)
	}
	if count > 0 {
		return false, fmt.Errorf("%w: %s", storage.ErrContainerIsNotEmpty, container.Name)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM containers WHERE name = ?", container.Name)
	if err != nil {
		return false, providerError("delete container", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("%w: %s", storage.ErrContainerDoesNotExist, container.Name)
	}
	if err := tx.Commit(); err != nil {
		return false, providerError("commit", err)
	}
	return true, nil
}

func (d *StorageDriver) ListContainerObjects(ctx context.Context, container *storage.Container) ([]*storage.Object, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT container, name, size, hash, content_type, meta_data, last_modified
		FROM objects WHERE container = ? ORDER BY name
	`, container.Name)
	if err != nil {
		return nil, providerError("list objects", err)
	}
	defer rows.Close()

	out := []*storage.Object{}
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, providerError("scan object", err)
		}
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, providerError("list objects", err)
	}
	return out, nil
}

func (d *StorageDriver) GetObject(ctx context.Context, containerName, objectName string) (*storage.Object, error) {
	if _, err := d.GetContainer(ctx, containerName); err != nil {
		return nil, err
	}
	row := d.db.QueryRowContext(ctx, `
		SELECT container, name, size, hash, content_type, meta_data, last_modified
		FROM objects WHERE container = ? AND name = ?
	`, containerName, objectName)
	obj, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", storage.ErrObjectDoesNotExist, containerName, objectName)
	}
	if err != nil {
		return nil, providerError("get object", err)
	}
	return obj, nil
}

// UploadObject stores data under objectName, replacing an existing object.
// extra may carry content_type and meta_data.
func (d *StorageDriver) UploadObject(ctx context.Context, container *storage.Container, objectName, data string, extra map[string]any) (*storage.Object, error) {
	contentType := defaultContentType
	if ct, ok := extra["content_type"].(string); ok && ct != "" {
		contentType = ct
	}
	meta := map[string]any{}
	if m, ok := extra["meta_data"].(map[string]any); ok {
		meta = m
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("meta_data: %w", err)
	}

	obj := &storage.Object{
		Name:          objectName,
		Size:          int64(len(data)),
		Hash:          d.hasher.Hash([]byte(data)),
		ContentType:   contentType,
		ContainerName: container.Name,
		Extra: map[string]any{
			"meta_data":     meta,
			"last_modified": d.clock.Now().UTC().Format(time.RFC3339),
		},
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO objects (container, name, data, size, hash, content_type, meta_data, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (container, name) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			hash = excluded.hash,
			content_type = excluded.content_type,
			meta_data = excluded.meta_data,
			last_modified = excluded.last_modified
	`, obj.ContainerName, obj.Name, []byte(data), obj.Size, obj.Hash, obj.ContentType, string(metaJSON), obj.Extra["last_modified"])
	if isConstraint(err) {
		return nil, fmt.Errorf("%w: %s", storage.ErrContainerDoesNotExist, container.Name)
	}
	if err != nil {
		return nil, providerError("upload object", err)
	}
	return obj, nil
}

func (d *StorageDriver) DownloadObject(ctx context.Context, obj *storage.Object) (string, error) {
	var data []byte
	err := d.db.QueryRowContext(ctx, "SELECT data FROM objects WHERE container = ? AND name = ?",
		obj.ContainerName, obj.Name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s/%s", storage.ErrObjectDoesNotExist, obj.ContainerName, obj.Name)
	}
	if err != nil {
		return "", providerError("download object", err)
	}
	return string(data), nil
}

func (d *StorageDriver) DeleteObject(ctx context.Context, obj *storage.Object) (bool, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM objects WHERE container = ? AND name = ?", obj.ContainerName, obj.Name)
	if err != nil {
		return false, providerError("delete object", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("%w: %s/%s", storage.ErrObjectDoesNotExist, obj.ContainerName, obj.Name)
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContainer(s scanner) (*storage.Container, error) {
	var (
		c         storage.Container
		createdAt string
		count     int
	)
	if err := s.Scan(&c.Name, &createdAt, &count); err != nil {
		return nil, err
	}
	c.Extra = map[string]any{"created_at": createdAt, "object_count": count}
	return &c, nil
}

func scanObject(s scanner) (*storage.Object, error) {
	var (
		obj          storage.Object
		metaJSON     string
		lastModified string
	)
	if err := s.Scan(&obj.ContainerName, &obj.Name, &obj.Size, &obj.Hash, &obj.ContentType, &metaJSON, &lastModified); err != nil {
		return nil, err
	}
	meta := map[string]any{}
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, fmt.Errorf("meta_data: %w", err)
	}
	obj.Extra = map[string]any{"meta_data": meta, "last_modified": lastModified}
	return &obj, nil
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

var _ storage.Driver = (*StorageDriver)(nil)

// DefaultMaxDatabases bounds the databases opened through NewDriverType
// when Options.MaxDatabases is zero.
const DefaultMaxDatabases = 16

// Options configures the driver type returned by NewDriverType.
type Options struct {
	// DefaultPath is used when the request names no database. Named
	// databases are files in the directory of DefaultPath.
	DefaultPath string
	// MaxDatabases bounds the open databases, DefaultMaxDatabases if zero.
	MaxDatabases int
	Hasher       ports.ContentHasher
	Clock        ports.Clock
}

// ResolvePath maps a database name to a file next to defaultPath. An empty
// name selects defaultPath. Names are plain file names: no separators, no
// leading dot and none of the characters SQLite reads as DSN syntax.
func ResolvePath(defaultPath, name string) (string, error) {
	if name == "" {
		return defaultPath, nil
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\?#:%`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: database name %q", domain.ErrInvalidCredential, name)
	}
	return filepath.Join(filepath.Dir(defaultPath), name), nil
}

// NewDriverType returns the SQLiteStorageDriver type. Its constructor opens
// (once per path) the database named by the path credential.
func NewDriverType(opts Options) *target.Type {
	if opts.Hasher == nil {
		opts.Hasher = hasher.Blake2b{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.UTC{}
	}
	if opts.MaxDatabases == 0 {
		opts.MaxDatabases = DefaultMaxDatabases
	}

	connect := func(name string) (*StorageDriver, error) {
		if opts.DefaultPath == "" {
			return nil, providerError("no database path configured", nil)
		}
		path, err := ResolvePath(opts.DefaultPath, name)
		if err != nil {
			return nil, err
		}
		db, err := databases.get(path, opts.MaxDatabases)
		if err != nil {
			return nil, providerError("open database", err)
		}
		return NewStorageDriver(db, opts.Hasher, opts.Clock), nil
	}

	return target.NewType("SQLiteStorageDriver", storage.StorageDriver).
		Define(target.Method{
			Name: target.Constructor,
			Doc: `Open the SQLite database holding the containers.

@param path: Name of a database file in the storage directory. Defaults
             to the configured storage path.
@type path: C{str}

@rtype: None`,
			Params: []target.Param{target.Optional("path", "")},
			Func:   connect,
		})
}
