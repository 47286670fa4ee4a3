package net

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service shares are advertised under.
const ServiceType = "_srcollect._tcp"

// Peer is a share found on the local network.
type Peer struct {
	Name string
	Addr string
}

// Advertise announces a share called name on port. The caller shuts the
// returned server down when the share stops.
func Advertise(name string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if name == "" {
		name = host
	}

	var ips []net.IP
	if ip, err := GetOutgoingIP(); err == nil {
		if parsed := net.ParseIP(ip); parsed != nil && !parsed.IsLoopback() {
			ips = []net.IP{parsed}
		}
	}

	service, err := mdns.NewMDNSService(
		host,
		ServiceType,
		"",
		"",
		port,
		ips,
		[]string{"name=" + name},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse lists the shares that answer within timeout.
func Browse(timeout time.Duration) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []Peer)
	go func() {
		var peers []Peer
		seen := make(map[string]bool)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := fmt.Sprintf("%s:%d", e.AddrV4, e.Port)
			if seen[addr] {
				continue
			}
			seen[addr] = true
			peers = append(peers, Peer{Name: peerName(e), Addr: addr})
		}
		done <- peers
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	peers := <-done
	if err != nil {
		return peers, fmt.Errorf("mDNS query: %w", err)
	}
	return peers, nil
}

func peerName(e *mdns.ServiceEntry) string {
	for _, field := range e.InfoFields {
		if v, ok := strings.CutPrefix(field, "name="); ok && v != "" {
			return v
		}
	}
	return e.Host
}
