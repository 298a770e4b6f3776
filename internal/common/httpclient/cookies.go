package httpclient

import "strings"

// parseCookies keeps the name=value segment of each Set-Cookie entry and joins
// them with ";". Attributes such as Path or Expires are dropped.
func parseCookies(setCookies []string) string {
	parts := make([]string, 0, len(setCookies))
	for _, entry := range setCookies {
		cookie, _, _ := strings.Cut(entry, ";")
		parts = append(parts, cookie)
	}
	return strings.Join(parts, ";")
}

// Cookie returns the cookie string captured from the most recent response
// that set any cookies.
func (c *HTTPClient) Cookie() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookie
}

// setCookie replaces the stored cookie string. Values are never merged.
func (c *HTTPClient) setCookie(cookie string) {
	c.mu.Lock()
	c.cookie = cookie
	c.mu.Unlock()
}
