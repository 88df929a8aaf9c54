// Package storage defines the object storage service: containers, objects
// and the driver contract providers implement.
package storage

import (
	"context"
	"errors"
)

var (
	ErrContainerDoesNotExist  = errors.New("container does not exist")
	ErrContainerAlreadyExists = errors.New("container already exists")
	ErrContainerIsNotEmpty    = errors.New("container is not empty")
	ErrObjectDoesNotExist     = errors.New("object does not exist")
)

// Container is a named bucket of objects.
type Container struct {
	Name  string         `json:"name"`
	Extra map[string]any `json:"extra"`
}

// Object is a stored object.
type Object struct {
	Name          string         `json:"name"`
	Size          int64          `json:"size"`
	Hash          string         `json:"hash"`
	ContentType   string         `json:"content_type"`
	ContainerName string         `json:"container"`
	Extra         map[string]any `json:"extra"`
}

// Driver is implemented by storage providers.
type Driver interface {
	ListContainers(ctx context.Context) ([]*Container, error)
	ListContainerObjects(ctx context.Context, container *Container) ([]*Object, error)
	GetContainer(ctx context.Context, containerName string) (*Container, error)
	GetObject(ctx context.Context, containerName, objectName string) (*Object, error)
	CreateContainer(ctx context.Context, containerName string) (*Container, error)
	DeleteContainer(ctx context.Context, container *Container) (bool, error)
	UploadObject(ctx context.Context, container *Container, objectName, data string, extra map[string]any) (*Object, error)
	DownloadObject(ctx context.Context, obj *Object) (string, error)
	DeleteObject(ctx context.Context, obj *Object) (bool, error)
}
