package http

import "net/http"

// Route maps a REST endpoint of a service onto a driver method. Patterns are
// relative to /{service}/{provider}.
type Route struct {
	Method  string
	Pattern string
	Op      string
	Status  int

	// Params renames URL parameters to document keys. Parameters not
	// listed keep their own name.
	Params map[string]string

	// Location names the result attribute echoed in the Location header.
	Location string

	// Upload passes the raw request body as the data argument.
	Upload bool

	// Download writes the string result as the raw response body.
	Download bool
}

func (rt Route) status() int {
	if rt.Status == 0 {
		return http.StatusOK
	}
	return rt.Status
}

func (rt Route) key(param string) string {
	if k, ok := rt.Params[param]; ok {
		return k
	}
	return param
}

// ComputeRoutes is the route table of the compute service.
var ComputeRoutes = []Route{
	{Method: http.MethodGet, Pattern: "/nodes", Op: "list_nodes"},
	{Method: http.MethodPost, Pattern: "/nodes", Op: "create_node", Status: http.StatusCreated, Location: "id"},
	{Method: http.MethodPut, Pattern: "/nodes/{node_id}/reboot", Op: "reboot_node", Status: http.StatusAccepted},
	{Method: http.MethodDelete, Pattern: "/nodes/{node_id}", Op: "destroy_node", Status: http.StatusAccepted},
	{Method: http.MethodGet, Pattern: "/sizes", Op: "list_sizes"},
	{Method: http.MethodGet, Pattern: "/images", Op: "list_images"},
	{Method: http.MethodGet, Pattern: "/locations", Op: "list_locations"},
}

// DNSRoutes is the route table of the dns service.
var DNSRoutes = []Route{
	{Method: http.MethodGet, Pattern: "/record_types", Op: "list_record_types"},
	{Method: http.MethodGet, Pattern: "/zones", Op: "list_zones"},
	{Method: http.MethodPost, Pattern: "/zones", Op: "create_zone", Status: http.StatusCreated, Location: "id"},
	{Method: http.MethodGet, Pattern: "/zones/{zone_id}", Op: "get_zone"},
	{Method: http.MethodPut, Pattern: "/zones/{zone_id}", Op: "update_zone"},
	{Method: http.MethodDelete, Pattern: "/zones/{zone_id}", Op: "delete_zone", Status: http.StatusAccepted},
	{Method: http.MethodGet, Pattern: "/zones/{zone_id}/records", Op: "list_records"},
	{Method: http.MethodPost, Pattern: "/zones/{zone_id}/records", Op: "create_record", Status: http.StatusCreated, Location: "id"},
	{Method: http.MethodGet, Pattern: "/zones/{zone_id}/records/{record_id}", Op: "get_record"},
	{Method: http.MethodPut, Pattern: "/zones/{zone_id}/records/{record_id}", Op: "update_record"},
	{Method: http.MethodDelete, Pattern: "/zones/{zone_id}/records/{record_id}", Op: "delete_record", Status: http.StatusAccepted},
}

var (
	balancerID = map[string]string{"balancer": "balancer_id"}
	balancer   = map[string]string{"balancer": "loadbalancer_id"}
)

// LoadBalancerRoutes is the route table of the loadbalancer service.
var LoadBalancerRoutes = []Route{
	{Method: http.MethodGet, Pattern: "/protocols", Op: "list_protocols"},
	{Method: http.MethodGet, Pattern: "/algorithms", Op: "list_supported_algorithms"},
	{Method: http.MethodGet, Pattern: "/balancers", Op: "list_balancers"},
	{Method: http.MethodPost, Pattern: "/balancers", Op: "create_balancer", Status: http.StatusCreated, Location: "id"},
	{Method: http.MethodGet, Pattern: "/balancers/{balancer}", Op: "get_balancer", Params: balancerID},
	{Method: http.MethodPut, Pattern: "/balancers/{balancer}", Op: "update_balancer", Params: balancer},
	{Method: http.MethodDelete, Pattern: "/balancers/{balancer}", Op: "destroy_balancer", Status: http.StatusAccepted, Params: balancer},
	{Method: http.MethodGet, Pattern: "/balancers/{balancer}/members", Op: "balancer_list_members", Params: balancer},
	{Method: http.MethodPost, Pattern: "/balancers/{balancer}/members", Op: "balancer_attach_member", Params: balancer},
	{Method: http.MethodDelete, Pattern: "/balancers/{balancer}/members/{member_id}", Op: "balancer_detach_member", Status: http.StatusAccepted, Params: balancer},
}

var object = map[string]string{"container": "container_name", "object": "object_name"}

// StorageRoutes is the route table of the storage service.
var StorageRoutes = []Route{
	{Method: http.MethodGet, Pattern: "/containers", Op: "list_containers"},
	{Method: http.MethodPost, Pattern: "/containers", Op: "create_container", Status: http.StatusCreated, Location: "name"},
	{Method: http.MethodGet, Pattern: "/containers/{container}", Op: "get_container", Params: object},
	{Method: http.MethodDelete, Pattern: "/containers/{container}", Op: "delete_container", Status: http.StatusNoContent, Params: object},
	{Method: http.MethodGet, Pattern: "/containers/{container}/objects", Op: "list_container_objects", Params: object},
	{Method: http.MethodPost, Pattern: "/containers/{container}/objects/{object}", Op: "upload_object", Params: object, Upload: true},
	{Method: http.MethodGet, Pattern: "/containers/{container}/objects/{object}", Op: "download_object", Params: object, Download: true},
	{Method: http.MethodGet, Pattern: "/containers/{container}/objects/{object}/metadata", Op: "get_object", Params: object},
	{Method: http.MethodDelete, Pattern: "/containers/{container}/objects/{object}", Op: "delete_object", Params: object},
}

// DefaultRoutes returns the route table of a known service.
func DefaultRoutes(service string) []Route {
	switch service {
	case "compute":
		return ComputeRoutes
	case "dns":
		return DNSRoutes
	case "loadbalancer":
		return LoadBalancerRoutes
	case "storage":
		return StorageRoutes
	}
	return nil
}
