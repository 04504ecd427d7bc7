//go:build !unix

package node

import "net"

func listenConfig() net.ListenConfig {
	return net.ListenConfig{KeepAlive: tcpKeepAlive}
}
