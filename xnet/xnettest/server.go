package xnettest

import (
	"net"
)

// maxDatagramSize is the largest UDP payload over IPv4.
const maxDatagramSize = 65507

// LoopbackPacketServer starts listening for packets on loopback interface. It
// returns configured connection and the channel to which it will send received
// datagrams. Connection must be closed at the end of the tests to release
// system resources.
func LoopbackPacketServer(network string) (net.PacketConn, <-chan []byte, error) {
	conn, err := net.ListenPacket(network, "127.0.0.1:0")
	if err != nil {
		return nil, nil, err
	}
	results := make(chan []byte, 256)
	go func() {
		defer close(results)
		for {
			buf := make([]byte, maxDatagramSize)
			n, _, err := conn.ReadFrom(buf)
			if err != nil {
				return // connection is closed
			}
			results <- buf[0:n]
		}
	}()
	return conn, results, nil
}

// Port returns the local port of conn.
func Port(conn net.PacketConn) int {
	return conn.LocalAddr().(*net.UDPAddr).Port
}
