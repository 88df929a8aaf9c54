// Package main is the entry point for cloudrest.
//
//	@title			cloudrest
//	@version		0.1
//	@description	REST interface to compute, DNS, load balancer and storage providers.
//
//	@contact.name	cloudrest
//	@contact.url	https://github.com/artpar/cloudrest/issues
//
//	@license.name	Apache 2.0
//	@license.url	https://www.apache.org/licenses/LICENSE-2.0
//
//	@host			localhost:5000
//	@BasePath		/
package main

func main() {
	Execute()
}
