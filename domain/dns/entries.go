package dns

import (
	"context"
	"fmt"

	"github.com/artpar/cloudrest/core/entry"
)

// RegisterEntries registers the DNS object types with r.
func RegisterEntries(r *entry.Registry) error {
	types := []entry.ObjectType{
		entry.NewObjectType[Zone]("Zone",
			[]string{"id", "domain", "type", "ttl", "extra"},
			func(ctx context.Context, fields map[string]any, driver any) (any, error) {
				d, err := driverOf(driver)
				if err != nil {
					return nil, err
				}
				return d.GetZone(ctx, fields["zone_id"].(string))
			},
			entry.Field{Name: "zone_id", Tag: "C{str}", Description: "ID of the zone which should be used", Required: true},
		),
		entry.NewObjectType[Record]("Record",
			[]string{"id", "name", "type", "data", "zone_id", "extra"},
			func(ctx context.Context, fields map[string]any, driver any) (any, error) {
				d, err := driverOf(driver)
				if err != nil {
					return nil, err
				}
				return d.GetRecord(ctx, fields["zone_id"].(string), fields["record_id"].(string))
			},
			entry.Field{Name: "zone_id", Tag: "C{str}", Description: "ID of the zone which should be used", Required: true},
			entry.Field{Name: "record_id", Tag: "C{str}", Description: "ID of the record which should be used", Required: true},
		),
		entry.SingleField[RecordType]("RecordType",
			entry.Field{Name: "record_type", Tag: "C{str}", Description: "Type of the record (A, AAAA, CNAME, ...)", Required: true},
		),
	}
	for _, t := range types {
		if err := r.RegisterObject(t); err != nil {
			return fmt.Errorf("dns: %w", err)
		}
	}
	return nil
}

func driverOf(driver any) (Driver, error) {
	d, ok := driver.(Driver)
	if !ok {
		return nil, fmt.Errorf("dns driver required, got %T", driver)
	}
	return d, nil
}
