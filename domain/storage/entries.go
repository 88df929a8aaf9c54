package storage

import (
	"context"
	"fmt"

	"github.com/artpar/cloudrest/core/entry"
)

// RegisterEntries registers the storage object types with r.
func RegisterEntries(r *entry.Registry) error {
	types := []entry.ObjectType{
		entry.NewObjectType[Container]("Container",
			[]string{"name", "extra"},
			func(ctx context.Context, fields map[string]any, driver any) (any, error) {
				d, err := driverOf(driver)
				if err != nil {
					return nil, err
				}
				return d.GetContainer(ctx, fields["container_name"].(string))
			},
			entry.Field{Name: "container_name", Tag: "C{str}", Description: "Name of the container which should be used", Required: true},
		),
		entry.NewObjectType[Object]("Object",
			[]string{"name", "size", "hash", "content_type", "container", "extra"},
			func(ctx context.Context, fields map[string]any, driver any) (any, error) {
				d, err := driverOf(driver)
				if err != nil {
					return nil, err
				}
				return d.GetObject(ctx, fields["container_name"].(string), fields["object_name"].(string))
			},
			entry.Field{Name: "container_name", Tag: "C{str}", Description: "Name of the container which holds the object", Required: true},
			entry.Field{Name: "object_name", Tag: "C{str}", Description: "Name of the object which should be used", Required: true},
		),
	}
	for _, t := range types {
		if err := r.RegisterObject(t); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}

func driverOf(driver any) (Driver, error) {
	d, ok := driver.(Driver)
	if !ok {
		return nil, fmt.Errorf("storage driver required, got %T", driver)
	}
	return d, nil
}
