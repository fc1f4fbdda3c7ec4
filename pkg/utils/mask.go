package utils

import "strings"

// MaskIP hides the middle segments of an IP address before it is logged or
// returned to the local shell.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}
	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) <= 2 {
			return ip
		}
		for i := 1; i < len(parts)-1; i++ {
			if parts[i] != "" {
				parts[i] = "*"
			}
		}
		return strings.Join(parts, ":")
	}
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ip
	}
	for i := 1; i < len(parts)-1; i++ {
		parts[i] = "*"
	}
	return strings.Join(parts, ".")
}
