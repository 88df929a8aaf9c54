package storage

import "github.com/artpar/cloudrest/core/target"

// StorageDriver is the base type of storage providers.
var StorageDriver = target.NewType("StorageDriver", nil).
	Define(target.Method{
		Name: "list_containers",
		Doc: `Return a list of containers.

@return: A list of Container instances.
@rtype: C{list} of L{Container}`,
		Func: Driver.ListContainers,
	}).
	Define(target.Method{
		Name: "list_container_objects",
		Doc: `Return a list of objects for the given container.

@param container: Container instance (required)
@type container: L{Container}

@return: A list of Object instances.
@rtype: C{list} of L{Object}`,
		Params: []target.Param{target.Required("container")},
		Func:   Driver.ListContainerObjects,
	}).
	Define(target.Method{
		Name: "get_container",
		Doc: `Return a container instance.

@param container_name: Container name. (required)
@type container_name: C{str}

@return: Container instance.
@rtype: L{Container}`,
		Params: []target.Param{target.Required("container_name")},
		Func:   Driver.GetContainer,
	}).
	Define(target.Method{
		Name: "get_object",
		Doc: `Return an object instance.

@param container_name: Container name. (required)
@type  container_name: C{str}

@param object_name: Object name. (required)
@type  object_name: C{str}

@return: Object instance.
@rtype: L{Object}`,
		Params: []target.Param{target.Required("container_name"), target.Required("object_name")},
		Func:   Driver.GetObject,
	}).
	Define(target.Method{
		Name: "create_container",
		Doc: `Create a new container.

@param container_name: Container name. (required)
@type container_name: C{str}

@return: Container instance on success.
@rtype: L{Container}`,
		Params: []target.Param{target.Required("container_name")},
		Func:   Driver.CreateContainer,
	}).
	Define(target.Method{
		Name: "delete_container",
		Doc: `Delete a container.

@param container: Container instance (required)
@type container: L{Container}

@return: True on success, False otherwise.
@rtype: C{bool}`,
		Params: []target.Param{target.Required("container")},
		Func:   Driver.DeleteContainer,
	}).
	Define(target.Method{
		Name: "upload_object",
		Doc: `Upload an object.

@param container: Destination container. (required)
@type container: L{Container}

@param object_name: Object name. (required)
@type object_name: C{str}

@param data: Object content. (required)
@type data: C{str}

@param extra: Extra attributes (content_type, meta_data).
@type extra: C{dict}

@return: The uploaded object.
@rtype: L{Object}`,
		Params: []target.Param{
			target.Required("container"),
			target.Required("object_name"),
			target.Required("data"),
			target.Optional("extra", nil),
		},
		Func: Driver.UploadObject,
	}).
	Define(target.Method{
		Name: "download_object",
		Doc: `Download the content of an object.

@param obj: Object instance. (required)
@type obj: L{Object}

@return: Object content.
@rtype: C{str}`,
		Params: []target.Param{target.Required("obj")},
		Func:   Driver.DownloadObject,
	}).
	Define(target.Method{
		Name: "delete_object",
		Doc: `Delete an object.

@param obj: Object instance. (required)
@type obj: L{Object}

@return: True on success, False otherwise.
@rtype: C{bool}`,
		Params: []target.Param{target.Required("obj")},
		Func:   Driver.DeleteObject,
	})
