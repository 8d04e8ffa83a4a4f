// Package discovery locates running receivers. Local discovery enumerates
// the host's IPv4 networks and connect-probes the service port across each
// subnet; public discovery asks a STUN server for the address this host is
// reachable at from outside its NAT.
package discovery

import (
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/nettf/nettf/pkg/logger"
)

// probeWorkers bounds concurrent connection attempts during a subnet scan.
const probeWorkers = 64

// maxScanPrefix caps how large a subnet the scanner will sweep. Anything
// wider than a /24 is probed as the /24 containing the local address.
const maxScanPrefix = 24

// Peer is one host that accepted a connection on the service port.
type Peer struct {
	Addr string
	RTT  time.Duration
}

// LocalNetworks returns the IPv4 CIDR networks of every up, non-loopback
// interface on this host.
func LocalNetworks() ([]string, error) {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}

	var nets []string
	for _, ifc := range ifaces {
		if !ifaceIsUp(ifc) || ifaceIsLoopback(ifc) {
			continue
		}
		for _, addr := range ifc.Addrs {
			ip, ipnet, err := net.ParseCIDR(addr.Addr)
			if err != nil || ip.To4() == nil {
				continue
			}
			nets = append(nets, clampSubnet(ip, ipnet))
		}
	}
	return nets, nil
}

func ifaceIsUp(ifc psnet.InterfaceStat) bool {
	for _, f := range ifc.Flags {
		if f == "up" {
			return true
		}
	}
	return false
}

func ifaceIsLoopback(ifc psnet.InterfaceStat) bool {
	for _, f := range ifc.Flags {
		if f == "loopback" {
			return true
		}
	}
	return false
}

// clampSubnet narrows a wide network to the /24 containing ip so a scan
// never sweeps more than 254 hosts per interface.
func clampSubnet(ip net.IP, ipnet *net.IPNet) string {
	ones, _ := ipnet.Mask.Size()
	if ones >= maxScanPrefix {
		return ipnet.String()
	}
	narrowed := net.IPNet{
		IP:   ip.Mask(net.CIDRMask(maxScanPrefix, 32)),
		Mask: net.CIDRMask(maxScanPrefix, 32),
	}
	return narrowed.String()
}

// hostAddrs expands a CIDR network into its usable host addresses, excluding
// the network and broadcast addresses.
func hostAddrs(cidr string) ([]string, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("parse network %s: %w", cidr, err)
	}
	ip = ip.Mask(ipnet.Mask).To4()
	if ip == nil {
		return nil, fmt.Errorf("network %s is not IPv4", cidr)
	}

	var hosts []string
	for cur := nextIP(ip); ipnet.Contains(cur); cur = nextIP(cur) {
		if isBroadcast(cur, ipnet) {
			break
		}
		hosts = append(hosts, cur.String())
	}
	return hosts, nil
}

func nextIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	for i := len(out) - 1; i >= 0; i-- {
		out[i]++
		if out[i] != 0 {
			break
		}
	}
	return out
}

func isBroadcast(ip net.IP, ipnet *net.IPNet) bool {
	v4 := ip.To4()
	mask := ipnet.Mask
	for i := range v4 {
		if v4[i]|^mask[i] != v4[i] {
			return false
		}
	}
	return true
}

// Scan sweeps every local network for hosts accepting connections on port.
// A successful TCP connect is the only criterion; the connection is closed
// immediately without speaking the protocol.
func Scan(port int, probeTimeout time.Duration) ([]Peer, error) {
	networks, err := LocalNetworks()
	if err != nil {
		return nil, err
	}
	if len(networks) == 0 {
		return nil, fmt.Errorf("no scannable IPv4 networks found")
	}

	var targets []string
	for _, cidr := range networks {
		hosts, err := hostAddrs(cidr)
		if err != nil {
			logger.Log.Warn("skipping network", "network", cidr, "error", err)
			continue
		}
		targets = append(targets, hosts...)
	}
	logger.Log.Info("scanning", "networks", len(networks), "hosts", len(targets), "port", port)

	var (
		mu    sync.Mutex
		peers []Peer
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, probeWorkers)
	for _, host := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(host string) {
			defer wg.Done()
			defer func() { <-sem }()

			addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
			start := time.Now()
			conn, err := net.DialTimeout("tcp", addr, probeTimeout)
			if err != nil {
				return
			}
			conn.Close()

			mu.Lock()
			peers = append(peers, Peer{Addr: addr, RTT: time.Since(start)})
			mu.Unlock()
		}(host)
	}
	wg.Wait()

	sort.Slice(peers, func(i, j int) bool { return peers[i].Addr < peers[j].Addr })
	return peers, nil
}
