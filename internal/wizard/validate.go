// ABOUTME: Input-boundary validators for wizard prompts
// ABOUTME: Bad ports and malformed IPv4 addresses never reach the resolver

package wizard

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ValidatePort checks a port prompt answer.
func ValidatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// ParsePort converts a validated port answer.
func ParsePort(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// ValidateIPv4 checks a custom bind host prompt answer.
func ValidateIPv4(s string) error {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("enter an IPv4 address like 192.168.1.10")
	}
	return nil
}
