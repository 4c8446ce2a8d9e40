package validators

import (
	"context"
	"net"
	"net/mail"
	"strings"
)

// Resolver is the subset of *net.Resolver the domain check needs.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// EmailChecker validates self-service email addresses. With lookups
// enabled the domain must publish MX or address records.
type EmailChecker struct {
	resolver Resolver
	lookup   bool
}

func NewEmailChecker(resolver Resolver, lookup bool) *EmailChecker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &EmailChecker{resolver: resolver, lookup: lookup}
}

func IsEmailSyntaxValid(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return false
	}
	return addr.Address == strings.TrimSpace(email)
}

func (v *EmailChecker) Valid(ctx context.Context, email string) bool {
	email = strings.TrimSpace(email)
	if !IsEmailSyntaxValid(email) {
		return false
	}
	if !v.lookup {
		return true
	}

	domain := email[strings.LastIndex(email, "@")+1:]

	if mx, err := v.resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := v.resolver.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}
