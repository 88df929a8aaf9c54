package loadbalancer

import "github.com/artpar/cloudrest/core/target"

// LoadBalancerDriver is the base type of load balancer providers.
var LoadBalancerDriver = target.NewType("LoadBalancerDriver", nil).
	Define(target.Method{
		Name: "list_protocols",
		Doc: `Return a list of supported protocols.

@return: list of protocols
@rtype: C{list} of C{str}`,
		Func: Driver.ListProtocols,
	}).
	Define(target.Method{
		Name: "list_balancers",
		Doc: `List all loadbalancers

@return: list of load balancer objects
@rtype: C{list} of L{LoadBalancer}`,
		Func: Driver.ListBalancers,
	}).
	Define(target.Method{
		Name: "create_balancer",
		Doc: `Create a new load balancer instance

@param name: Name of the new load balancer (required)
@type  name: C{str}

@param port: Port the load balancer should listen on, defaults to 80
@type  port: C{int}

@param protocol: Loadbalancer protocol, defaults to http.
@type  protocol: C{str}

@param members: list of Members to attach to balancer
@type  members: C{list} of L{Member}

@param algorithm: Load balancing algorithm, defaults to ROUND_ROBIN
@type algorithm: L{Algorithm}

@return: the created load balancer
@rtype: L{LoadBalancer}`,
		Params: []target.Param{
			target.Required("name"),
			target.Optional("port", 80),
			target.Optional("protocol", "http"),
			target.Optional("algorithm", AlgorithmRoundRobin),
			target.Required("members"),
		},
		Func: Driver.CreateBalancer,
	}).
	Define(target.Method{
		Name: "destroy_balancer",
		Doc: `Destroy a load balancer

@param balancer: LoadBalancer which should be used (required)
@type  balancer: L{LoadBalancer}

@return: True if the destroy was successful, otherwise False
@rtype: C{bool}`,
		Params: []target.Param{target.Required("balancer")},
		Func:   Driver.DestroyBalancer,
	}).
	Define(target.Method{
		Name: "get_balancer",
		Doc: `Return a L{LoadBalancer} object.

@param balancer_id: id of a load balancer you want to fetch (required)
@type  balancer_id: C{str}

@return: the load balancer
@rtype: L{LoadBalancer}`,
		Params: []target.Param{target.Required("balancer_id")},
		Func:   Driver.GetBalancer,
	}).
	Define(target.Method{
		Name: "update_balancer",
		Doc: `Sets the name, algorithm, protocol, or port on a load balancer.

@param   balancer: LoadBalancer which should be used (required)
@type    balancer: L{LoadBalancer}

@keyword name: New load balancer name
@type    name: C{str}

@keyword algorithm: New load balancer algorithm
@type    algorithm: L{Algorithm}

@keyword protocol: New load balancer protocol
@type    protocol: C{str}

@keyword port: New load balancer port
@type    port: C{int}

@return: the updated load balancer
@rtype: L{LoadBalancer}`,
		Params:   []target.Param{target.Required("balancer")},
		Keywords: true,
		Func:     Driver.UpdateBalancer,
	}).
	Define(target.Method{
		Name: "balancer_attach_member",
		Doc: `Attach a member to balancer

@param balancer: LoadBalancer which should be used (required)
@type  balancer: L{LoadBalancer}

@param member: Member to join to the balancer (required)
@type member: L{Member}

@return: Member after joining the balancer.
@rtype: L{Member}`,
		Params: []target.Param{target.Required("balancer"), target.Required("member")},
		Func:   Driver.BalancerAttachMember,
	}).
	Define(target.Method{
		Name: "balancer_detach_member",
		Doc: `Detach member from balancer

@param balancer: LoadBalancer which should be used (required)
@type  balancer: L{LoadBalancer}

@param member_id: ID of the member which should be detached (required)
@type  member_id: C{str}

@return: True if member detach was successful, otherwise False
@rtype: C{bool}`,
		Params: []target.Param{target.Required("balancer"), target.Required("member_id")},
		Func:   Driver.BalancerDetachMember,
	}).
	Define(target.Method{
		Name: "balancer_list_members",
		Doc: `Return list of members attached to balancer

@param balancer: LoadBalancer which should be used (required)
@type  balancer: L{LoadBalancer}

@return: list of members
@rtype: C{list} of L{Member}`,
		Params: []target.Param{target.Required("balancer")},
		Func:   Driver.BalancerListMembers,
	}).
	Define(target.Method{
		Name: "list_supported_algorithms",
		Doc: `Return algorithms supported by this driver.

@return: list of algorithm names
@rtype: C{list} of C{str}`,
		Func: Driver.ListSupportedAlgorithms,
	})
