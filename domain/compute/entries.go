package compute

import (
	"context"
	"fmt"

	"github.com/artpar/cloudrest/core/entry"
)

// RegisterEntries registers the compute object types with r.
func RegisterEntries(r *entry.Registry) error {
	for _, t := range objectTypes() {
		if err := r.RegisterObject(t); err != nil {
			return fmt.Errorf("compute: %w", err)
		}
	}
	return nil
}

func objectTypes() []entry.ObjectType {
	return []entry.ObjectType{
		entry.NewObjectType[Node]("Node",
			[]string{"id", "name", "state", "public_ips", "private_ips"},
			lookupNode,
			entry.Field{Name: "node_id", Tag: "C{str}", Description: "ID of the node which should be used", Required: true},
		),
		entry.NewObjectType[NodeSize]("NodeSize",
			[]string{"id", "name", "ram", "disk", "bandwidth", "price"},
			lookupSize,
			entry.Field{Name: "size_id", Tag: "C{str}", Description: "ID of the size which should be used", Required: true},
		),
		entry.NewObjectType[NodeImage]("NodeImage",
			[]string{"id", "name"},
			lookupImage,
			entry.Field{Name: "image_id", Tag: "C{str}", Description: "ID of the image which should be used", Required: true},
		),
		entry.NewObjectType[NodeLocation]("NodeLocation",
			[]string{"id", "name", "country"},
			lookupLocation,
			entry.Field{Name: "location_id", Tag: "C{str}", Description: "ID of the location which should be used", Required: true},
		),
		entry.NewObjectType[NodeAuthSSHKey]("NodeAuthSSHKey",
			[]string{"pubkey"},
			func(_ context.Context, fields map[string]any, _ any) (any, error) {
				return &NodeAuthSSHKey{PubKey: fields["node_pubkey"].(string)}, nil
			},
			entry.Field{Name: "node_pubkey", Tag: "C{str}", Description: "An SSH key to be installed for authentication to a node", Required: true},
		),
		entry.NewObjectType[NodeAuthPassword]("NodeAuthPassword",
			[]string{"password"},
			func(_ context.Context, fields map[string]any, _ any) (any, error) {
				return &NodeAuthPassword{Password: fields["node_password"].(string)}, nil
			},
			entry.Field{Name: "node_password", Tag: "C{str}", Description: "A password to be used for authentication to a node", Required: true},
		),
	}
}

func driverOf(driver any) (Driver, error) {
	d, ok := driver.(Driver)
	if !ok {
		return nil, fmt.Errorf("compute driver required, got %T", driver)
	}
	return d, nil
}

func lookupNode(ctx context.Context, fields map[string]any, driver any) (any, error) {
	d, err := driverOf(driver)
	if err != nil {
		return nil, err
	}
	nodes, err := d.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	id := fields["node_id"].(string)
	for _, n := range nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeDoesNotExist, id)
}

func lookupSize(ctx context.Context, fields map[string]any, driver any) (any, error) {
	d, err := driverOf(driver)
	if err != nil {
		return nil, err
	}
	sizes, err := d.ListSizes(ctx, nil)
	if err != nil {
		return nil, err
	}
	id := fields["size_id"].(string)
	for _, s := range sizes {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSizeDoesNotExist, id)
}

func lookupImage(ctx context.Context, fields map[string]any, driver any) (any, error) {
	d, err := driverOf(driver)
	if err != nil {
		return nil, err
	}
	images, err := d.ListImages(ctx, nil)
	if err != nil {
		return nil, err
	}
	id := fields["image_id"].(string)
	for _, img := range images {
		if img.ID == id {
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrImageDoesNotExist, id)
}

func lookupLocation(ctx context.Context, fields map[string]any, driver any) (any, error) {
	d, err := driverOf(driver)
	if err != nil {
		return nil, err
	}
	locations, err := d.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	id := fields["location_id"].(string)
	for _, l := range locations {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLocationDoesNotExist, id)
}
