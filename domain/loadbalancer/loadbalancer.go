// Package loadbalancer defines the load balancer service.
package loadbalancer

import (
	"context"
	"errors"
)

var (
	ErrBalancerDoesNotExist = errors.New("load balancer does not exist")
	ErrMemberDoesNotExist   = errors.New("member does not exist")
	ErrUnsupportedAlgorithm = errors.New("algorithm is not supported")
)

// State is the provisioning state of a balancer.
type State string

const (
	StateRunning State = "running"
	StatePending State = "pending"
	StateUnknown State = "unknown"
)

// Algorithm selects how a balancer spreads traffic across members.
type Algorithm string

const (
	AlgorithmRandom             Algorithm = "random"
	AlgorithmRoundRobin         Algorithm = "round_robin"
	AlgorithmLeastConnections   Algorithm = "least_connections"
	AlgorithmWeightedRoundRobin Algorithm = "weighted_round_robin"
)

// LoadBalancer is a provisioned balancer.
type LoadBalancer struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	State State          `json:"state"`
	IP    string         `json:"ip"`
	Port  int            `json:"port"`
	Extra map[string]any `json:"extra"`
}

// Member is a backend attached to a balancer.
type Member struct {
	ID   string `json:"id"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Driver is implemented by load balancer providers.
type Driver interface {
	ListProtocols(ctx context.Context) ([]string, error)
	ListBalancers(ctx context.Context) ([]*LoadBalancer, error)
	CreateBalancer(ctx context.Context, name string, port int, protocol string, algorithm Algorithm, members []*Member) (*LoadBalancer, error)
	DestroyBalancer(ctx context.Context, balancer *LoadBalancer) (bool, error)
	GetBalancer(ctx context.Context, balancerID string) (*LoadBalancer, error)
	UpdateBalancer(ctx context.Context, balancer *LoadBalancer, attrs map[string]any) (*LoadBalancer, error)
	BalancerAttachMember(ctx context.Context, balancer *LoadBalancer, member *Member) (*Member, error)
	BalancerDetachMember(ctx context.Context, balancer *LoadBalancer, memberID string) (bool, error)
	BalancerListMembers(ctx context.Context, balancer *LoadBalancer) ([]*Member, error)
	ListSupportedAlgorithms(ctx context.Context) ([]Algorithm, error)
}
