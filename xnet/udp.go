package xnet

import (
	"net"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// loopbackHosts resolve to the IPv4 loopback address without asking the
// system resolver.
var loopbackHosts = map[string]bool{
	"0.0.0.0":   true,
	"localhost": true,
	"127.0.0.1": true,
}

// ResolveUDPAddr returns the UDP address of host:port. Loopback equivalent
// host names are mapped to 127.0.0.1 directly.
func ResolveUDPAddr(host string, port int) (*net.UDPAddr, error) {
	if port <= 0 || port > 65535 {
		return nil, errors.Errorf("invalid port %d", port)
	}
	if loopbackHosts[host] {
		return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}, nil
	}
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %s:%d", host, port)
	}
	return addr, nil
}

// UDPSender is an io.Writer that sends every written buffer as a single UDP
// datagram to a fixed destination. It reuses a single system socket that is
// opened on the first write. The destination is resolved on the first write
// and cached; failed resolutions are retried on the next write.
// UDPSender is safe for concurrent use.
type UDPSender struct {
	host string
	port int

	mutex sync.Mutex
	conn  *net.UDPConn
	addr  *net.UDPAddr
}

// NewUDPSender returns a sender writing datagrams to host:port.
func NewUDPSender(host string, port int) *UDPSender {
	return &UDPSender{host: host, port: port}
}

// Write sends p as one datagram. It returns number of bytes sent and error -
// if there was any. Delivery is not acknowledged.
func (s *UDPSender) Write(p []byte) (int, error) {
	conn, addr, err := s.connection()
	if err != nil {
		return 0, err
	}
	n, err := conn.WriteToUDP(p, addr)
	if err != nil {
		return n, errors.Wrapf(err, "could not send datagram to %s", addr)
	}
	return n, nil
}

func (s *UDPSender) connection() (*net.UDPConn, *net.UDPAddr, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.addr == nil {
		addr, err := ResolveUDPAddr(s.host, s.port)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("Resolved %s:%d to %s", s.host, s.port, addr)
		s.addr = addr
	}
	if s.conn == nil {
		conn, err := net.ListenUDP("udp", nil)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not create connection")
		}
		s.conn = conn
	}
	return s.conn, s.addr, nil
}

// Release frees system socket used by sender. A later write opens a new one.
func (s *UDPSender) Release() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
