package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

var privateNets = mustParseCIDRs("10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7")

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		out = append(out, n)
	}
	return out
}

// ClientIP returns the address recorded in audit entries.
//
// X-Real-IP wins when it carries a public address, then the first public hop
// of X-Forwarded-For, then whatever gin resolves from RemoteAddr. Intranet
// deployments usually end up in the last branch.
func ClientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); IsPublicIP(ip) {
		return ip
	}
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for _, hop := range hops {
			if ip := strings.TrimSpace(hop); IsPublicIP(ip) {
				return ip
			}
		}
		if first := strings.TrimSpace(hops[0]); net.ParseIP(first) != nil {
			return first
		}
	}
	return c.ClientIP()
}

// IsPublicIP reports whether s parses as a non-loopback, non-private address.
func IsPublicIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil || ip.IsLoopback() {
		return false
	}
	for _, n := range privateNets {
		if n.Contains(ip) {
			return false
		}
	}
	return true
}

// UserAgent returns the request User-Agent or "Unknown".
func UserAgent(c *gin.Context) string {
	if ua := c.Request.UserAgent(); ua != "" {
		return ua
	}
	return "Unknown"
}
