package compute

import "github.com/artpar/cloudrest/core/target"

// NodeDriver is the base type of compute providers. Its methods dispatch
// through the Driver interface.
var NodeDriver = target.NewType("NodeDriver", nil).
	Define(target.Method{
		Name: "list_nodes",
		Doc: `List all nodes.

@return: list of node objects
@rtype: C{list} of L{Node}`,
		Func: Driver.ListNodes,
	}).
	Define(target.Method{
		Name: "list_sizes",
		Doc: `List sizes on a provider.

@param      location: The location at which to list sizes
@type       location: L{NodeLocation}

@return: list of node size objects
@rtype: C{list} of L{NodeSize}`,
		Params: []target.Param{target.Optional("location", nil)},
		Func:   Driver.ListSizes,
	}).
	Define(target.Method{
		Name: "list_images",
		Doc: `List images on a provider.

@param      location: The location at which to list images
@type       location: L{NodeLocation}

@return: list of node image objects
@rtype: C{list} of L{NodeImage}`,
		Params: []target.Param{target.Optional("location", nil)},
		Func:   Driver.ListImages,
	}).
	Define(target.Method{
		Name: "list_locations",
		Doc: `List data centers for a provider.

@return: list of node location objects
@rtype: C{list} of L{NodeLocation}`,
		Func: Driver.ListLocations,
	}).
	Define(target.Method{
		Name: "create_node",
		Doc: `Create a new node instance.

@keyword    name:   String with a name for this new node (required)
@type       name:   C{str}

@keyword    size:   The size of resources allocated to this node.
                    (required)
@type       size:   L{NodeSize}

@keyword    image:  OS Image to boot on node. (required)
@type       image:  L{NodeImage}

@keyword    location: Which data center to create a node in. If empty,
                      undefined behavior will be selected.
@type       location: L{NodeLocation}

@keyword    auth:   Initial authentication information for the node
@type       auth:   L{NodeAuthSSHKey} or L{NodeAuthPassword}

@return: The newly created node.
@rtype: L{Node}`,
		Params: []target.Param{
			target.Required("name"),
			target.Required("size"),
			target.Required("image"),
			target.Optional("location", nil),
			target.Optional("auth", nil),
		},
		Keywords: true,
		Func:     Driver.CreateNode,
	}).
	Define(target.Method{
		Name: "reboot_node",
		Doc: `Reboot a node.

@param node: The node to be rebooted (required)
@type node: L{Node}

@return: True if the reboot was successful, otherwise False
@rtype: C{bool}`,
		Params: []target.Param{target.Required("node")},
		Func:   Driver.RebootNode,
	}).
	Define(target.Method{
		Name: "destroy_node",
		Doc: `Destroy a node.

Depending upon the provider, this may destroy all data associated with
the node, including backups.

@param node: The node to be destroyed (required)
@type node: L{Node}

@return: True if the destroy was successful, otherwise False
@rtype: C{bool}`,
		Params: []target.Param{target.Required("node")},
		Func:   Driver.DestroyNode,
	})
