package discovery

import (
	"fmt"

	"github.com/pion/stun/v2"
)

// PublicAddr asks a STUN server for the address and port this host appears
// as from the public internet. Useful before asking a remote party to send
// through a NAT; port mapping itself is out of scope, the caller still has
// to forward the service port.
func PublicAddr(stunServer string) (string, error) {
	c, err := stun.Dial("udp4", stunServer)
	if err != nil {
		return "", fmt.Errorf("dial STUN server %s: %w", stunServer, err)
	}
	defer c.Close()

	msg := stun.MustBuild(stun.TransactionID, stun.BindingRequest)

	var (
		addr    stun.XORMappedAddress
		callErr error
	)
	if err := c.Do(msg, func(res stun.Event) {
		if res.Error != nil {
			callErr = res.Error
			return
		}
		callErr = addr.GetFrom(res.Message)
	}); err != nil {
		return "", fmt.Errorf("STUN binding request: %w", err)
	}
	if callErr != nil {
		return "", fmt.Errorf("STUN binding response: %w", callErr)
	}
	return fmt.Sprintf("%s:%d", addr.IP, addr.Port), nil
}
