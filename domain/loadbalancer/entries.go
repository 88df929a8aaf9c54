package loadbalancer

import (
	"context"
	"fmt"

	"github.com/artpar/cloudrest/core/entry"
)

// RegisterEntries registers the load balancer object types with r.
func RegisterEntries(r *entry.Registry) error {
	types := []entry.ObjectType{
		entry.NewObjectType[LoadBalancer]("LoadBalancer",
			[]string{"id", "name", "state", "ip", "port"},
			func(ctx context.Context, fields map[string]any, driver any) (any, error) {
				d, ok := driver.(Driver)
				if !ok {
					return nil, fmt.Errorf("load balancer driver required, got %T", driver)
				}
				return d.GetBalancer(ctx, fields["loadbalancer_id"].(string))
			},
			entry.Field{Name: "loadbalancer_id", Tag: "C{str}", Description: "ID of the load balancer which should be used", Required: true},
		),
		entry.NewObjectType[Member]("Member",
			[]string{"id", "ip", "port"},
			newMember,
			entry.Field{Name: "member_id", Tag: "C{str}", Description: "ID of the member which should be used"},
			entry.Field{Name: "member_ip", Tag: "C{str}", Description: "IP address of the member", Required: true},
			entry.Field{Name: "member_port", Tag: "C{int}", Description: "Port of the member", Required: true},
		),
		entry.SingleField[Algorithm]("Algorithm",
			entry.Field{Name: "algorithm", Tag: "C{str}", Description: "Load balancing algorithm", Required: true},
		),
	}
	for _, t := range types {
		if err := r.RegisterObject(t); err != nil {
			return fmt.Errorf("loadbalancer: %w", err)
		}
	}
	return nil
}

func newMember(_ context.Context, fields map[string]any, _ any) (any, error) {
	m := &Member{IP: fields["member_ip"].(string)}
	if id, ok := fields["member_id"].(string); ok {
		m.ID = id
	}
	port, ok := fields["member_port"].(int64)
	if !ok {
		return nil, fmt.Errorf("member_port: unexpected %T", fields["member_port"])
	}
	m.Port = int(port)
	return m, nil
}
