package generator

import (
	"bytes"
	"encoding/binary"
	"net"

	"github.com/bwmarrin/snowflake"
)

func IDbyIP(ip string) uint32 {
	var id uint32
	binary.Read(bytes.NewBuffer(net.ParseIP(ip).To4()), binary.BigEndian, &id)
	return id
}

// NodeID folds an IPv4 address into the snowflake node range.
func NodeID(ip string) int64 {
	return int64(IDbyIP(ip) % uint32(1<<snowflake.NodeBits))
}

// LocalIP returns the first non-loopback IPv4 address of the host, or "".
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

// RunIDs hands out crawl run identifiers.
type RunIDs struct {
	node *snowflake.Node
}

func NewRunIDs(ip string) (*RunIDs, error) {
	node, err := snowflake.NewNode(NodeID(ip))
	if err != nil {
		return nil, err
	}
	return &RunIDs{node: node}, nil
}

func (r *RunIDs) Next() string {
	return r.node.Generate().String()
}
