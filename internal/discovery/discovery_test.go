package discovery

import (
	"net"
	"testing"
)

func TestHostAddrsSlash30(t *testing.T) {
	hosts, err := hostAddrs("192.168.1.0/30")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"192.168.1.1", "192.168.1.2"}
	if len(hosts) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(hosts), len(want), hosts)
	}
	for i := range want {
		if hosts[i] != want[i] {
			t.Fatalf("hosts[%d] = %s, want %s", i, hosts[i], want[i])
		}
	}
}

func TestHostAddrsSlash24Count(t *testing.T) {
	hosts, err := hostAddrs("10.0.5.0/24")
	if err != nil {
		t.Fatal(err)
	}
	if len(hosts) != 254 {
		t.Fatalf("len = %d, want 254", len(hosts))
	}
	if hosts[0] != "10.0.5.1" || hosts[253] != "10.0.5.254" {
		t.Fatalf("range = %s..%s", hosts[0], hosts[253])
	}
}

func TestHostAddrsRejectsIPv6(t *testing.T) {
	if _, err := hostAddrs("fd00::/64"); err == nil {
		t.Fatal("IPv6 network accepted")
	}
}

func TestClampSubnetNarrowsWideNetworks(t *testing.T) {
	ip, ipnet, err := net.ParseCIDR("10.1.2.3/16")
	if err != nil {
		t.Fatal(err)
	}
	if got := clampSubnet(ip, ipnet); got != "10.1.2.0/24" {
		t.Fatalf("clampSubnet = %s, want 10.1.2.0/24", got)
	}

	ip, ipnet, err = net.ParseCIDR("192.168.1.7/28")
	if err != nil {
		t.Fatal(err)
	}
	if got := clampSubnet(ip, ipnet); got != "192.168.1.0/28" {
		t.Fatalf("clampSubnet = %s, want 192.168.1.0/28", got)
	}
}

func TestNextIPCarries(t *testing.T) {
	ip := net.IPv4(10, 0, 0, 255).To4()
	if got := nextIP(ip).String(); got != "10.0.1.0" {
		t.Fatalf("nextIP = %s, want 10.0.1.0", got)
	}
}
