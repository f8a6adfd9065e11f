package shim

import (
	"context"
	"net/http"
	"time"
)

// JarBacking names the storage behind a CookieJar.
type JarBacking string

const (
	// BackingHost reads cookies parsed by ParseCookies and writes Set-Cookie
	// headers on the live response.
	BackingHost JarBacking = "host"
	// BackingMemory is the fallback when no cookie parser ran. It starts
	// empty and only records changes in memory.
	BackingMemory JarBacking = "memory"
)

// CookieJar is the cookie view handed to handlers.
type CookieJar interface {
	// Get returns the value of the named cookie.
	Get(name string) (string, bool)
	// GetAll returns every cookie in the jar.
	GetAll() []*http.Cookie
	// Has reports whether the named cookie is present.
	Has(name string) bool
	// Set stores c, replacing any cookie with the same name.
	Set(c *http.Cookie)
	// Delete removes the named cookie.
	Delete(name string)
	// Backing reports which storage the jar uses.
	Backing() JarBacking
}

type cookiesKey struct{}

// cookieStore is what ParseCookies leaves on the request context.
type cookieStore struct {
	w       http.ResponseWriter
	cookies []*http.Cookie
}

// ParseCookies is the host's cookie parser. Handlers behind it get a
// host-backed CookieJar; without it they get an in-memory one.
func ParseCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := &cookieStore{w: w, cookies: r.Cookies()}
		ctx := context.WithValue(r.Context(), cookiesKey{}, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newCookieJar selects the jar once per request.
func newCookieJar(ctx context.Context) CookieJar {
	if store, ok := ctx.Value(cookiesKey{}).(*cookieStore); ok {
		return &hostJar{store: store}
	}
	return &memoryJar{}
}

type hostJar struct {
	store *cookieStore
}

func (j *hostJar) Get(name string) (string, bool) {
	if c := findCookie(j.store.cookies, name); c != nil {
		return c.Value, true
	}
	return "", false
}

func (j *hostJar) GetAll() []*http.Cookie {
	return cloneCookies(j.store.cookies)
}

func (j *hostJar) Has(name string) bool {
	return findCookie(j.store.cookies, name) != nil
}

func (j *hostJar) Set(c *http.Cookie) {
	if c == nil || c.Name == "" {
		return
	}
	http.SetCookie(j.store.w, c)
	j.store.cookies = putCookie(j.store.cookies, c)
}

func (j *hostJar) Delete(name string) {
	http.SetCookie(j.store.w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	j.store.cookies = removeCookie(j.store.cookies, name)
}

func (j *hostJar) Backing() JarBacking { return BackingHost }

type memoryJar struct {
	cookies []*http.Cookie
}

func (j *memoryJar) Get(name string) (string, bool) {
	if c := findCookie(j.cookies, name); c != nil {
		return c.Value, true
	}
	return "", false
}

func (j *memoryJar) GetAll() []*http.Cookie { return cloneCookies(j.cookies) }

func (j *memoryJar) Has(name string) bool { return findCookie(j.cookies, name) != nil }

func (j *memoryJar) Set(c *http.Cookie) {
	if c == nil || c.Name == "" {
		return
	}
	j.cookies = putCookie(j.cookies, c)
}

func (j *memoryJar) Delete(name string) { j.cookies = removeCookie(j.cookies, name) }

func (j *memoryJar) Backing() JarBacking { return BackingMemory }

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func putCookie(cookies []*http.Cookie, c *http.Cookie) []*http.Cookie {
	cp := *c
	for i, existing := range cookies {
		if existing.Name == c.Name {
			cookies[i] = &cp
			return cookies
		}
	}
	return append(cookies, &cp)
}

func removeCookie(cookies []*http.Cookie, name string) []*http.Cookie {
	out := cookies[:0]
	for _, c := range cookies {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}

func cloneCookies(cookies []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, len(cookies))
	for i, c := range cookies {
		cp := *c
		out[i] = &cp
	}
	return out
}
