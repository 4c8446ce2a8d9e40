package validators

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeResolver struct {
	mx  map[string][]*net.MX
	ips map[string][]net.IPAddr
}

func (f fakeResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if mx, ok := f.mx[name]; ok {
		return mx, nil
	}
	return nil, errors.New("no such host")
}

func (f fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	if ips, ok := f.ips[host]; ok {
		return ips, nil
	}
	return nil, errors.New("no such host")
}

func TestEmailSyntax(t *testing.T) {
	assert.True(t, IsEmailSyntaxValid("ana@example.com"))
	assert.False(t, IsEmailSyntaxValid("ana"))
	assert.False(t, IsEmailSyntaxValid("Ana <ana@example.com>"))
	assert.False(t, IsEmailSyntaxValid(""))
}

func TestEmailCheckerLookups(t *testing.T) {
	r := fakeResolver{
		mx:  map[string][]*net.MX{"mail.com": {{Host: "mx.mail.com.", Pref: 10}}},
		ips: map[string][]net.IPAddr{"host.com": {{IP: net.IPv4(10, 0, 0, 1)}}},
	}
	ctx := context.Background()

	v := NewEmailChecker(r, true)
	assert.True(t, v.Valid(ctx, "a@mail.com"))
	assert.True(t, v.Valid(ctx, "a@host.com"))
	assert.False(t, v.Valid(ctx, "a@nowhere.invalid"))

	off := NewEmailChecker(r, false)
	assert.True(t, off.Valid(ctx, "a@nowhere.invalid"))
	assert.False(t, off.Valid(ctx, "not-an-email"))
}
