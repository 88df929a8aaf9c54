// Package compute defines the compute service: nodes, their sizes, images
// and locations, and the driver contract providers implement.
package compute

import (
	"context"
	"errors"
)

// Lookup failures.
var (
	ErrNodeDoesNotExist     = errors.New("node does not exist")
	ErrSizeDoesNotExist     = errors.New("node size does not exist")
	ErrImageDoesNotExist    = errors.New("node image does not exist")
	ErrLocationDoesNotExist = errors.New("node location does not exist")
)

// NodeState is the lifecycle state of a node.
type NodeState string

const (
	StateRunning    NodeState = "running"
	StateRebooting  NodeState = "rebooting"
	StateTerminated NodeState = "terminated"
	StatePending    NodeState = "pending"
	StateUnknown    NodeState = "unknown"
)

// Node is a virtual server.
type Node struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	State      NodeState      `json:"state"`
	PublicIPs  []string       `json:"public_ips"`
	PrivateIPs []string       `json:"private_ips"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NodeSize is a hardware configuration a node can be created with.
type NodeSize struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	RAM       int     `json:"ram"`
	Disk      int     `json:"disk"`
	Bandwidth int     `json:"bandwidth"`
	Price     float64 `json:"price"`
}

// NodeImage is an operating system image.
type NodeImage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NodeLocation is a data center.
type NodeLocation struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// NodeAuth is the initial credential installed on a new node.
type NodeAuth interface {
	nodeAuth()
}

// NodeAuthSSHKey installs a public SSH key.
type NodeAuthSSHKey struct {
	PubKey string `json:"pubkey"`
}

// NodeAuthPassword sets a root password.
type NodeAuthPassword struct {
	Password string `json:"password"`
}

func (*NodeAuthSSHKey) nodeAuth()   {}
func (*NodeAuthPassword) nodeAuth() {}

// Driver is implemented by compute providers.
type Driver interface {
	ListNodes(ctx context.Context) ([]*Node, error)
	ListSizes(ctx context.Context, location *NodeLocation) ([]*NodeSize, error)
	ListImages(ctx context.Context, location *NodeLocation) ([]*NodeImage, error)
	ListLocations(ctx context.Context) ([]*NodeLocation, error)
	CreateNode(ctx context.Context, name string, size *NodeSize, image *NodeImage, location *NodeLocation, auth NodeAuth, extra map[string]any) (*Node, error)
	RebootNode(ctx context.Context, node *Node) (bool, error)
	DestroyNode(ctx context.Context, node *Node) (bool, error)
}
