package auth

import (
	"context"
	"fmt"
	"strings"
)

// StaticVerifier maps fixed tokens to uids. Meant for local development.
type StaticVerifier struct {
	tokens map[string]string
}

// ParseStaticTokens reads "token:uid,token2:uid2".
func ParseStaticTokens(spec string) (*StaticVerifier, error) {
	v := &StaticVerifier{tokens: map[string]string{}}
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, uid, ok := strings.Cut(pair, ":")
		if !ok || token == "" || uid == "" {
			return nil, fmt.Errorf("bad static token entry %q", pair)
		}
		v.tokens[token] = uid
	}
	if len(v.tokens) == 0 {
		return nil, fmt.Errorf("no static tokens")
	}
	return v, nil
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	uid, ok := v.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &Identity{UID: uid}, nil
}
