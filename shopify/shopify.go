// Package shopify holds the embedded-app context a dashboard request runs under: the
// shop the merchant is signed into and the encoded admin host.
package shopify

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

// ErrInvalidShop is returned where a real *.myshopify.com domain is needed, such as
// the dest claim of a session token.
var ErrInvalidShop = errors.New("invalid shop domain")

// Context identifies the shop an embedded app page was opened for.
type Context struct {
	Shop string `json:"shop" yaml:"shop"`
	// Host is the base64 encoded admin host Shopify passes to embedded apps.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
}

// ParseContext reads shop and host from the page query string, with or without a
// leading "?". The shop is an opaque identifier and is taken as given; a missing shop
// yields an empty Context and no error.
func ParseContext(rawQuery string) (Context, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return Context{}, fmt.Errorf("parse shop context: %w", err)
	}
	ctx := Context{
		Shop: strings.TrimSpace(values.Get("shop")),
		Host: strings.TrimSpace(values.Get("host")),
	}
	return ctx, nil
}

// IsZero reports whether no shop is known.
func (c Context) IsZero() bool {
	return c.Shop == ""
}

// IsValidShopDomain reports whether shop looks like "<name>.myshopify.com". It is
// advisory for page context; only token minting requires it.
func IsValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// ShopFromDest turns the dest claim of a session token ("https://acme.myshopify.com")
// into the bare shop domain.
func ShopFromDest(dest string) (string, error) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", fmt.Errorf("parse dest %q: %w", dest, err)
	}
	shop := strings.ToLower(u.Hostname())
	if !IsValidShopDomain(shop) {
		return "", fmt.Errorf("%w: %q", ErrInvalidShop, dest)
	}
	return shop, nil
}

// AdminHost decodes Host into the admin hostname, e.g. "admin.shopify.com/store/acme".
func (c Context) AdminHost() (string, error) {
	if c.Host == "" {
		return "", nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(c.Host, "="))
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(c.Host, "="))
		if err != nil {
			return "", fmt.Errorf("decode host: %w", err)
		}
	}
	return string(decoded), nil
}

// ReauthURL builds the address that restarts the app's OAuth flow for this shop:
// "<authBase>/api/auth/initiate?shop=<shop>[&host=<host>]". An empty authBase yields
// a server-relative URL.
func (c Context) ReauthURL(authBase string) string {
	q := url.Values{}
	q.Set("shop", c.Shop)
	if c.Host != "" {
		q.Set("host", c.Host)
	}
	return strings.TrimRight(authBase, "/") + "/api/auth/initiate?" + q.Encode()
}
