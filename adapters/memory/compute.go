// Package memory provides in-memory provider drivers used for development
// and testing.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/artpar/cloudrest/adapters/idgen"
	"github.com/artpar/cloudrest/core/target"
	"github.com/artpar/cloudrest/domain/compute"
	"github.com/artpar/cloudrest/ports"
)

// ComputeDriver is the DUMMY compute provider. Nodes live in memory for the
// lifetime of the driver instance.
type ComputeDriver struct {
	mu    sync.RWMutex
	ids   ports.IDGenerator
	nodes []*compute.Node

	sizes     []*compute.NodeSize
	images    []*compute.NodeImage
	locations []*compute.NodeLocation
}

// NewComputeDriver creates a driver. A numeric creds value seeds that many
// nodes; anything else seeds two.
func NewComputeDriver(creds string) (*ComputeDriver, error) {
	d := &ComputeDriver{
		ids: idgen.NewSequential(""),
		sizes: []*compute.NodeSize{
			{ID: "1", Name: "Small", RAM: 128, Disk: 4, Bandwidth: 500, Price: 4},
			{ID: "2", Name: "Medium", RAM: 512, Disk: 16, Bandwidth: 1500, Price: 8},
			{ID: "3", Name: "Big", RAM: 4096, Disk: 32, Bandwidth: 2500, Price: 32},
			{ID: "4", Name: "XXL Big", RAM: 4096 * 2, Disk: 32 * 4, Bandwidth: 2500 * 3, Price: 32 * 2},
		},
		images: []*compute.NodeImage{
			{ID: "1", Name: "Ubuntu 9.10"},
			{ID: "2", Name: "Ubuntu 9.04"},
			{ID: "3", Name: "Slackware 4"},
		},
		locations: []*compute.NodeLocation{
			{ID: "1", Name: "Paul's Room", Country: "US"},
			{ID: "2", Name: "London Loft", Country: "GB"},
			{ID: "3", Name: "Island Datacenter", Country: "FJ"},
		},
	}

	n := 2
	if v, err := strconv.Atoi(creds); err == nil {
		if v < 0 {
			return nil, fmt.Errorf("creds must not be negative, got %d", v)
		}
		n = v
	}
	for i := 0; i < n; i++ {
		d.nodes = append(d.nodes, d.newNode())
	}
	return d, nil
}

// newNode allocates the next node; callers hold mu or own d exclusively.
func (d *ComputeDriver) newNode() *compute.Node {
	id := d.ids.New()
	seq, _ := strconv.Atoi(id)
	return &compute.Node{
		ID:         id,
		Name:       "dummy-" + id,
		State:      compute.StateRunning,
		PublicIPs:  []string{fmt.Sprintf("127.0.0.%d", seq)},
		PrivateIPs: []string{},
		Extra:      map[string]any{"foo": "bar"},
	}
}

func (d *ComputeDriver) ListNodes(ctx context.Context) ([]*compute.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*compute.Node, len(d.nodes))
	copy(out, d.nodes)
	return out, nil
}

func (d *ComputeDriver) ListSizes(ctx context.Context, _ *compute.NodeLocation) ([]*compute.NodeSize, error) {
	return d.sizes, nil
}

func (d *ComputeDriver) ListImages(ctx context.Context, _ *compute.NodeLocation) ([]*compute.NodeImage, error) {
	return d.images, nil
}

func (d *ComputeDriver) ListLocations(ctx context.Context) ([]*compute.NodeLocation, error) {
	return d.locations, nil
}

func (d *ComputeDriver) CreateNode(ctx context.Context, name string, size *compute.NodeSize, image *compute.NodeImage,
	location *compute.NodeLocation, auth compute.NodeAuth, extra map[string]any) (*compute.Node, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.newNode()
	n.Name = name
	n.Extra = map[string]any{"size": size.ID, "image": image.ID}
	if location != nil {
		n.Extra["location"] = location.ID
	}
	switch auth.(type) {
	case *compute.NodeAuthSSHKey:
		n.Extra["auth"] = "ssh_key"
	case *compute.NodeAuthPassword:
		n.Extra["auth"] = "password"
	}
	for k, v := range extra {
		n.Extra[k] = v
	}
	d.nodes = append(d.nodes, n)
	return n, nil
}

func (d *ComputeDriver) RebootNode(ctx context.Context, node *compute.Node) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, _, err := d.find(node.ID)
	if err != nil {
		return false, err
	}
	n.State = compute.StateRebooting
	return true, nil
}

func (d *ComputeDriver) DestroyNode(ctx context.Context, node *compute.Node) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, i, err := d.find(node.ID)
	if err != nil {
		return false, err
	}
	n.State = compute.StateTerminated
	d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)
	return true, nil
}

// ExRenameNode changes the name of a node.
func (d *ComputeDriver) ExRenameNode(ctx context.Context, node *compute.Node, name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, _, err := d.find(node.ID)
	if err != nil {
		return false, err
	}
	n.Name = name
	return true, nil
}

func (d *ComputeDriver) find(id string) (*compute.Node, int, error) {
	for i, n := range d.nodes {
		if n.ID == id {
			return n, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", compute.ErrNodeDoesNotExist, id)
}

var _ compute.Driver = (*ComputeDriver)(nil)

// DummyNodeDriver exposes ComputeDriver.
var DummyNodeDriver = target.NewType("DummyNodeDriver", compute.NodeDriver).
	Define(target.Method{
		Name: target.Constructor,
		Doc: `Create a dummy compute driver.

@param creds: Number of nodes to start with. Any other value starts
              with two nodes. (required)
@type creds: C{str}

@rtype: None`,
		Params: []target.Param{target.Required("creds")},
		Func:   NewComputeDriver,
	}).
	Define(target.Method{
		Name: "create_node",
		Doc: `Create a dummy node.

@inherits: L{NodeDriver.create_node}

@keyword ex_tags: Tags stored in the node extra attributes.
@type ex_tags: C{dict}`,
		Params: []target.Param{
			target.Required("name"),
			target.Required("size"),
			target.Required("image"),
			target.Optional("location", nil),
			target.Optional("auth", nil),
		},
		Keywords: true,
		Func:     (*ComputeDriver).CreateNode,
	}).
	Define(target.Method{
		Name: "ex_rename_node",
		Doc: `Rename a node.

@param node: The node to be renamed (required)
@type node: L{Node}

@param name: New name of the node (required)
@type name: C{str}

@return: True if the node was renamed
@rtype: C{bool}`,
		Params: []target.Param{target.Required("node"), target.Required("name")},
		Func:   (*ComputeDriver).ExRenameNode,
	})
