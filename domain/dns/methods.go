package dns

import "github.com/artpar/cloudrest/core/target"

// DNSDriver is the base type of DNS providers.
var DNSDriver = target.NewType("DNSDriver", nil).
	Define(target.Method{
		Name: "list_record_types",
		Doc: `Return a list of RecordType objects supported by the provider.

@return: list of supported record types
@rtype: C{list} of C{str}`,
		Func: Driver.ListRecordTypes,
	}).
	Define(target.Method{
		Name: "list_zones",
		Doc: `Return a list of zones.

@return: list of zone objects
@rtype: C{list} of L{Zone}`,
		Func: Driver.ListZones,
	}).
	Define(target.Method{
		Name: "list_records",
		Doc: `Return a list of records for the provided zone.

@param zone: Zone to list records for. (required)
@type zone: L{Zone}

@return: list of record objects
@rtype: C{list} of L{Record}`,
		Params: []target.Param{target.Required("zone")},
		Func:   Driver.ListRecords,
	}).
	Define(target.Method{
		Name: "get_zone",
		Doc: `Return a Zone instance.

@param zone_id: ID of the required zone (required)
@type zone_id: C{str}

@return: the zone
@rtype: L{Zone}`,
		Params: []target.Param{target.Required("zone_id")},
		Func:   Driver.GetZone,
	}).
	Define(target.Method{
		Name: "get_record",
		Doc: `Return a Record instance.

@param zone_id: ID of the required zone (required)
@type zone_id: C{str}

@param record_id: ID of the required record (required)
@type record_id: C{str}

@return: the record
@rtype: L{Record}`,
		Params: []target.Param{target.Required("zone_id"), target.Required("record_id")},
		Func:   Driver.GetRecord,
	}).
	Define(target.Method{
		Name: "create_zone",
		Doc: `Create a new zone.

@param domain: Zone domain name. (required)
@type domain: C{str}

@param type: Zone type (master / slave).
@type type: C{str}

@param ttl: TTL for new records.
@type ttl: C{int}

@param extra: Extra attributes (driver specific).
@type extra: C{dict}

@return: the created zone
@rtype: L{Zone}`,
		Params: []target.Param{
			target.Required("domain"),
			target.Optional("type", "master"),
			target.Optional("ttl", 0),
			target.Optional("extra", nil),
		},
		Func: Driver.CreateZone,
	}).
	Define(target.Method{
		Name: "update_zone",
		Doc: `Update an existing zone.

@param zone: Zone to update. (required)
@type zone: L{Zone}

@param domain: Zone domain name.
@type domain: C{str}

@param type: Zone type (master / slave).
@type type: C{str}

@param ttl: TTL for new records.
@type ttl: C{int}

@param extra: Extra attributes (driver specific).
@type extra: C{dict}

@return: the updated zone
@rtype: L{Zone}`,
		Params: []target.Param{
			target.Required("zone"),
			target.Optional("domain", ""),
			target.Optional("type", "master"),
			target.Optional("ttl", 0),
			target.Optional("extra", nil),
		},
		Func: Driver.UpdateZone,
	}).
	Define(target.Method{
		Name: "create_record",
		Doc: `Create a new record.

@param name: Record name without the domain name (e.g. www).
             Note: If you want to create a record for a base domain
             name, you should specify empty string ('') for this
             argument. (required)
@type  name: C{str}

@param zone: Zone where the requested record is created. (required)
@type  zone: L{Zone}

@param type: DNS record type (A, AAAA, ...). (required)
@type  type: L{RecordType}

@param data: Data for the record (depends on the record type).
             (required)
@type  data: C{str}

@param extra: Extra attributes (driver specific).
@type extra: C{dict}

@return: the created record
@rtype: L{Record}`,
		Params: []target.Param{
			target.Required("name"),
			target.Required("zone"),
			target.Required("type"),
			target.Required("data"),
			target.Optional("extra", nil),
		},
		Func: Driver.CreateRecord,
	}).
	Define(target.Method{
		Name: "update_record",
		Doc: `Update an existing record.

@param record: Record to update. (required)
@type  record: L{Record}

@param name: Record name without the domain name (e.g. www). (required)
@type  name: C{str}

@param type: DNS record type (A, AAAA, ...). (required)
@type  type: L{RecordType}

@param data: Data for the record (depends on the record type).
             (required)
@type  data: C{str}

@param extra: Extra attributes (driver specific).
@type extra: C{dict}

@return: the updated record
@rtype: L{Record}`,
		Params: []target.Param{
			target.Required("record"),
			target.Required("name"),
			target.Required("type"),
			target.Required("data"),
			target.Optional("extra", nil),
		},
		Func: Driver.UpdateRecord,
	}).
	Define(target.Method{
		Name: "delete_zone",
		Doc: `Delete a zone.

Note: This will delete all the records belonging to this zone.

@param zone: Zone to delete. (required)
@type  zone: L{Zone}

@return: True if the zone was deleted
@rtype: C{bool}`,
		Params: []target.Param{target.Required("zone")},
		Func:   Driver.DeleteZone,
	}).
	Define(target.Method{
		Name: "delete_record",
		Doc: `Delete a record.

@param record: Record to delete. (required)
@type  record: L{Record}

@return: True if the record was deleted
@rtype: C{bool}`,
		Params: []target.Param{target.Required("record")},
		Func:   Driver.DeleteRecord,
	})
