package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/artpar/cloudrest/adapters/idgen"
	"github.com/artpar/cloudrest/core/target"
	"github.com/artpar/cloudrest/domain/loadbalancer"
	"github.com/artpar/cloudrest/ports"
)

var (
	lbProtocols  = []string{"http", "https", "tcp"}
	lbAlgorithms = []loadbalancer.Algorithm{
		loadbalancer.AlgorithmRandom,
		loadbalancer.AlgorithmRoundRobin,
		loadbalancer.AlgorithmLeastConnections,
	}
)

type balancerEntry struct {
	lb        *loadbalancer.LoadBalancer
	protocol  string
	algorithm loadbalancer.Algorithm
	members   []*loadbalancer.Member
}

// LoadBalancerDriver is the DUMMY load balancer provider.
type LoadBalancerDriver struct {
	mu        sync.RWMutex
	ids       ports.IDGenerator
	memberIDs ports.IDGenerator
	balancers map[string]*balancerEntry
	order     []string
}

// NewLoadBalancerDriver creates a driver without balancers.
func NewLoadBalancerDriver(key, secret string) (*LoadBalancerDriver, error) {
	return &LoadBalancerDriver{
		ids:       idgen.NewSequential(""),
		memberIDs: idgen.NewSequential("member-"),
		balancers: make(map[string]*balancerEntry),
	}, nil
}

func (d *LoadBalancerDriver) ListProtocols(ctx context.Context) ([]string, error) {
	return lbProtocols, nil
}

func (d *LoadBalancerDriver) ListSupportedAlgorithms(ctx context.Context) ([]loadbalancer.Algorithm, error) {
	return lbAlgorithms, nil
}

func (d *LoadBalancerDriver) ListBalancers(ctx context.Context) ([]*loadbalancer.LoadBalancer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*loadbalancer.LoadBalancer, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.balancers[id].lb)
	}
	return out, nil
}

func (d *LoadBalancerDriver) CreateBalancer(ctx context.Context, name string, port int, protocol string,
	algorithm loadbalancer.Algorithm, members []*loadbalancer.Member) (*loadbalancer.LoadBalancer, error) {
	if err := checkBalancer(protocol, algorithm); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.ids.New()
	e := &balancerEntry{
		lb: &loadbalancer.LoadBalancer{
			ID:    id,
			Name:  name,
			State: loadbalancer.StateRunning,
			IP:    "127.0.1." + id,
			Port:  port,
			Extra: map[string]any{"protocol": protocol, "algorithm": string(algorithm)},
		},
		protocol:  protocol,
		algorithm: algorithm,
	}
	for _, m := range members {
		e.members = append(e.members, d.newMember(m))
	}
	d.balancers[id] = e
	d.order = append(d.order, id)
	return e.lb, nil
}

func (d *LoadBalancerDriver) DestroyBalancer(ctx context.Context, balancer *loadbalancer.LoadBalancer) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.get(balancer.ID); err != nil {
		return false, err
	}
	delete(d.balancers, balancer.ID)
	d.order = slices.DeleteFunc(d.order, func(id string) bool { return id == balancer.ID })
	return true, nil
}

func (d *LoadBalancerDriver) GetBalancer(ctx context.Context, balancerID string) (*loadbalancer.LoadBalancer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, err := d.get(balancerID)
	if err != nil {
		return nil, err
	}
	return e.lb, nil
}

// UpdateBalancer applies the name, algorithm, protocol and port keywords.
func (d *LoadBalancerDriver) UpdateBalancer(ctx context.Context, balancer *loadbalancer.LoadBalancer, attrs map[string]any) (*loadbalancer.LoadBalancer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.get(balancer.ID)
	if err != nil {
		return nil, err
	}

	protocol, algorithm := e.protocol, e.algorithm
	if v, ok := attrs["protocol"].(string); ok {
		protocol = v
	}
	if v, ok := attrs["algorithm"].(loadbalancer.Algorithm); ok {
		algorithm = v
	}
	if err := checkBalancer(protocol, algorithm); err != nil {
		return nil, err
	}
	e.protocol, e.algorithm = protocol, algorithm
	e.lb.Extra["protocol"] = protocol
	e.lb.Extra["algorithm"] = string(algorithm)

	if v, ok := attrs["name"].(string); ok {
		e.lb.Name = v
	}
	if v, ok := attrs["port"].(int64); ok {
		e.lb.Port = int(v)
	}
	return e.lb, nil
}

func (d *LoadBalancerDriver) BalancerAttachMember(ctx context.Context, balancer *loadbalancer.LoadBalancer, member *loadbalancer.Member) (*loadbalancer.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.get(balancer.ID)
	if err != nil {
		return nil, err
	}
	m := d.newMember(member)
	e.members = append(e.members, m)
	return m, nil
}

func (d *LoadBalancerDriver) BalancerDetachMember(ctx context.Context, balancer *loadbalancer.LoadBalancer, memberID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.get(balancer.ID)
	if err != nil {
		return false, err
	}
	i := slices.IndexFunc(e.members, func(m *loadbalancer.Member) bool { return m.ID == memberID })
	if i < 0 {
		return false, fmt.Errorf("%w: %s", loadbalancer.ErrMemberDoesNotExist, memberID)
	}
	e.members = slices.Delete(e.members, i, i+1)
	return true, nil
}

func (d *LoadBalancerDriver) BalancerListMembers(ctx context.Context, balancer *loadbalancer.LoadBalancer) ([]*loadbalancer.Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, err := d.get(balancer.ID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(e.members), nil
}

func (d *LoadBalancerDriver) get(id string) (*balancerEntry, error) {
	e, ok := d.balancers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", loadbalancer.ErrBalancerDoesNotExist, id)
	}
	return e, nil
}

// newMember copies m, assigning an id when it has none.
func (d *LoadBalancerDriver) newMember(m *loadbalancer.Member) *loadbalancer.Member {
	out := *m
	if out.ID == "" {
		out.ID = d.memberIDs.New()
	}
	return &out
}

func checkBalancer(protocol string, algorithm loadbalancer.Algorithm) error {
	if !slices.Contains(lbProtocols, protocol) {
		return fmt.Errorf("protocol %q is not supported", protocol)
	}
	if !slices.Contains(lbAlgorithms, algorithm) {
		return fmt.Errorf("%w: %s", loadbalancer.ErrUnsupportedAlgorithm, algorithm)
	}
	return nil
}

var _ loadbalancer.Driver = (*LoadBalancerDriver)(nil)

// DummyLBDriver exposes LoadBalancerDriver.
var DummyLBDriver = target.NewType("DummyLBDriver", loadbalancer.LoadBalancerDriver).
	Define(target.Method{
		Name: target.Constructor,
		Doc: `Create a dummy load balancer driver.

@param key: API key or username to be used (required)
@type key: C{str}

@param secret: Secret password to be used (required)
@type secret: C{str}

@rtype: None`,
		Params: []target.Param{target.Required("key"), target.Required("secret")},
		Func:   NewLoadBalancerDriver,
	})
