package auth

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	accessTokenCookie = "sb-access-token"
	sessionCookieTail = "-auth-token"
	base64Prefix      = "base64-"
)

// TokenFromRequest returns the Supabase access token of a request: the bearer
// header first, then the sb-access-token cookie, then a sb-<ref>-auth-token
// session cookie (possibly split into .0, .1, ... chunks).
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	return tokenFromSessionCookies(r.Cookies())
}

type cookieChunk struct {
	index int
	value string
}

func tokenFromSessionCookies(cookies []*http.Cookie) string {
	sessions := map[string][]cookieChunk{}
	for _, c := range cookies {
		if !strings.HasPrefix(c.Name, "sb-") {
			continue
		}
		name, index := c.Name, -1
		if dot := strings.LastIndex(c.Name, "."); dot > 0 {
			if n, err := strconv.Atoi(c.Name[dot+1:]); err == nil {
				name, index = c.Name[:dot], n
			}
		}
		if !strings.HasSuffix(name, sessionCookieTail) {
			continue
		}
		sessions[name] = append(sessions[name], cookieChunk{index: index, value: c.Value})
	}

	names := make([]string, 0, len(sessions))
	for name := range sessions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		chunks := sessions[name]
		sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })

		var b strings.Builder
		for _, chunk := range chunks {
			b.WriteString(chunk.value)
		}
		if token := accessTokenFromSession(b.String()); token != "" {
			return token
		}
	}

	return ""
}

// accessTokenFromSession reads access_token from a stored session value
func accessTokenFromSession(raw string) string {
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	if strings.HasPrefix(raw, base64Prefix) {
		encoded := strings.TrimPrefix(raw, base64Prefix)
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			decoded, err = base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return ""
			}
		}
		raw = string(decoded)
	}

	if !gjson.Valid(raw) {
		return ""
	}

	parsed := gjson.Parse(raw)
	if parsed.IsArray() {
		// Older helpers stored [access_token, refresh_token, ...]
		return parsed.Get("0").String()
	}
	return parsed.Get("access_token").String()
}
