package domain

import (
	"fmt"
	"strings"
)

const maxTickerLength = 10

// NormalizeTicker upper-cases and validates a ticker symbol.
// Accepts letters, digits, '.' and '-' (e.g. "BRK.B", "BF-B").
// A leading exchange qualifier such as "NASDAQ:AAPL" is stripped.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if i := strings.LastIndex(t, ":"); i >= 0 {
		t = t[i+1:]
	}
	if t == "" || len(t) > maxTickerLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	for _, r := range t {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
		}
	}
	return t, nil
}

// NormalizeTickers normalises a list, dropping duplicates and preserving order.
// The first invalid ticker aborts with an error.
func NormalizeTickers(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t, err := NormalizeTicker(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
