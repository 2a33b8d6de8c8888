package config

import (
	"net"
	"os"
	"strings"
	"sync"
)

// dockerHostGateway is how a container reaches services on its host.
const dockerHostGateway = "host.docker.internal"

// Marker files written by Docker and Podman into every container root.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

var inContainer = sync.OnceValue(func() bool {
	for _, marker := range containerMarkers {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}
	return false
})

// IsRunningInDocker reports whether the engine runs inside a container.
func IsRunningInDocker() bool {
	return inContainer()
}

// ResolveHostForDocker rewrites a loopback warehouse host to the Docker host
// gateway when the engine is containerized, so a Postgres or ClickHouse on the
// developer machine stays reachable. Anything else is returned as is.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, containerized bool) string {
	if !containerized || !isLoopback(host) {
		return host
	}
	return dockerHostGateway
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
