// Package dns defines the DNS service: zones, records and the driver
// contract providers implement.
package dns

import (
	"context"
	"errors"
)

// Driver failures with a dedicated error class.
var (
	ErrZoneDoesNotExist      = errors.New("zone does not exist")
	ErrZoneAlreadyExists     = errors.New("zone already exists")
	ErrRecordDoesNotExist    = errors.New("record does not exist")
	ErrRecordAlreadyExists   = errors.New("record already exists")
	ErrUnsupportedRecordType = errors.New("record type is not supported")
)

// RecordType is a DNS resource record type.
type RecordType string

const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeCNAME RecordType = "CNAME"
	TypeMX    RecordType = "MX"
	TypeNS    RecordType = "NS"
	TypePTR   RecordType = "PTR"
	TypeSOA   RecordType = "SOA"
	TypeSRV   RecordType = "SRV"
	TypeTXT   RecordType = "TXT"
)

// Zone is a DNS zone.
type Zone struct {
	ID     string         `json:"id"`
	Domain string         `json:"domain"`
	Type   string         `json:"type"`
	TTL    int            `json:"ttl"`
	Extra  map[string]any `json:"extra"`
}

// Record is a resource record inside a zone.
type Record struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   RecordType     `json:"type"`
	Data   string         `json:"data"`
	ZoneID string         `json:"zone_id"`
	Extra  map[string]any `json:"extra"`
}

// Driver is implemented by DNS providers.
type Driver interface {
	ListRecordTypes(ctx context.Context) ([]RecordType, error)
	ListZones(ctx context.Context) ([]*Zone, error)
	ListRecords(ctx context.Context, zone *Zone) ([]*Record, error)
	GetZone(ctx context.Context, zoneID string) (*Zone, error)
	GetRecord(ctx context.Context, zoneID, recordID string) (*Record, error)
	CreateZone(ctx context.Context, domain, zoneType string, ttl int, extra map[string]any) (*Zone, error)
	UpdateZone(ctx context.Context, zone *Zone, domain, zoneType string, ttl int, extra map[string]any) (*Zone, error)
	CreateRecord(ctx context.Context, name string, zone *Zone, recordType RecordType, data string, extra map[string]any) (*Record, error)
	UpdateRecord(ctx context.Context, record *Record, name string, recordType RecordType, data string, extra map[string]any) (*Record, error)
	DeleteZone(ctx context.Context, zone *Zone) (bool, error)
	DeleteRecord(ctx context.Context, record *Record) (bool, error)
}
