package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/cloudrest/core/target"
	"github.com/artpar/cloudrest/domain/dns"
)

// DNSDriver is the DUMMY DNS provider. Zone ids are "id-<domain>" and
// record ids "id-<name>", so creating the same zone or record twice fails.
type DNSDriver struct {
	mu      sync.RWMutex
	zones   map[string]*dns.Zone
	records map[string]map[string]*dns.Record // zone id -> record id
}

// NewDNSDriver creates a driver. key and secret are accepted but not checked.
func NewDNSDriver(key, secret string) (*DNSDriver, error) {
	return &DNSDriver{
		zones:   make(map[string]*dns.Zone),
		records: make(map[string]map[string]*dns.Record),
	}, nil
}

func (d *DNSDriver) ListRecordTypes(ctx context.Context) ([]dns.RecordType, error) {
	return []dns.RecordType{dns.TypeA}, nil
}

func (d *DNSDriver) ListZones(ctx context.Context) ([]*dns.Zone, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*dns.Zone, 0, len(d.zones))
	for _, z := range d.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *DNSDriver) ListRecords(ctx context.Context, zone *dns.Zone) ([]*dns.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	recs, ok := d.records[zone.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dns.ErrZoneDoesNotExist, zone.ID)
	}
	out := make([]*dns.Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *DNSDriver) GetZone(ctx context.Context, zoneID string) (*dns.Zone, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	z, ok := d.zones[zoneID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dns.ErrZoneDoesNotExist, zoneID)
	}
	return z, nil
}

func (d *DNSDriver) GetRecord(ctx context.Context, zoneID, recordID string) (*dns.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	recs, ok := d.records[zoneID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dns.ErrZoneDoesNotExist, zoneID)
	}
	r, ok := recs[recordID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dns.ErrRecordDoesNotExist, recordID)
	}
	return r, nil
}

func (d *DNSDriver) CreateZone(ctx context.Context, domain, zoneType string, ttl int, extra map[string]any) (*dns.Zone, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := "id-" + domain
	if _, exists := d.zones[id]; exists {
		return nil, fmt.Errorf("%w: %s", dns.ErrZoneAlreadyExists, id)
	}
	z := &dns.Zone{ID: id, Domain: domain, Type: zoneType, TTL: ttl, Extra: extra}
	d.zones[id] = z
	d.records[id] = make(map[string]*dns.Record)
	return z, nil
}

func (d *DNSDriver) UpdateZone(ctx context.Context, zone *dns.Zone, domain, zoneType string, ttl int, extra map[string]any) (*dns.Zone, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	z, ok := d.zones[zone.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dns.ErrZoneDoesNotExist, zone.ID)
	}
	if domain != "" {
		z.Domain = domain
	}
	if zoneType != "" {
		z.Type = zoneType
	}
	if ttl != 0 {
		z.TTL = ttl
	}
	if extra != nil {
		z.Extra = extra
	}
	return z, nil
}

func (d *DNSDriver) CreateRecord(ctx context.Context, name string, zone *dns.Zone, recordType dns.RecordType, data string, extra map[string]any) (*dns.Record, error) {
	if recordType != dns.TypeA {
		return nil, fmt.Errorf("%w: %s", dns.ErrUnsupportedRecordType, recordType)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	recs, ok := d.records[zone.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dns.ErrZoneDoesNotExist, zone.ID)
	}
	id := "id-" + name
	if _, exists := recs[id]; exists {
		return nil, fmt.Errorf("%w: %s", dns.ErrRecordAlreadyExists, id)
	}
	r := &dns.Record{ID: id, Name: name, Type: recordType, Data: data, ZoneID: zone.ID, Extra: extra}
	recs[id] = r
	return r, nil
}

func (d *DNSDriver) UpdateRecord(ctx context.Context, record *dns.Record, name string, recordType dns.RecordType, data string, extra map[string]any) (*dns.Record, error) {
	if recordType != dns.TypeA {
		return nil, fmt.Errorf("%w: %s", dns.ErrUnsupportedRecordType, recordType)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.records[record.ZoneID][record.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dns.ErrRecordDoesNotExist, record.ID)
	}
	r.Name = name
	r.Type = recordType
	r.Data = data
	if extra != nil {
		r.Extra = extra
	}
	return r, nil
}

func (d *DNSDriver) DeleteZone(ctx context.Context, zone *dns.Zone) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.zones[zone.ID]; !ok {
		return false, fmt.Errorf("%w: %s", dns.ErrZoneDoesNotExist, zone.ID)
	}
	delete(d.zones, zone.ID)
	delete(d.records, zone.ID)
	return true, nil
}

func (d *DNSDriver) DeleteRecord(ctx context.Context, record *dns.Record) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	recs := d.records[record.ZoneID]
	if _, ok := recs[record.ID]; !ok {
		return false, fmt.Errorf("%w: %s", dns.ErrRecordDoesNotExist, record.ID)
	}
	delete(recs, record.ID)
	return true, nil
}

var _ dns.Driver = (*DNSDriver)(nil)

// DummyDNSDriver exposes DNSDriver.
var DummyDNSDriver = target.NewType("DummyDNSDriver", dns.DNSDriver).
	Define(target.Method{
		Name: target.Constructor,
		Doc: `Create a dummy DNS driver.

@param key: API key or username to be used (required)
@type key: C{str}

@param secret: Secret password to be used
@type secret: C{str}

@rtype: None`,
		Params: []target.Param{target.Required("key"), target.Optional("secret", "")},
		Func:   NewDNSDriver,
	})
