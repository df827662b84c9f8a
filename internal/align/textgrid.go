package align

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Interval is one labelled TextGrid interval.
type Interval struct {
	Start float64
	End   float64
	Text  string
}

// TextGrid holds interval tiers by name.
type TextGrid struct {
	Tiers map[string][]Interval
}

// ParseTextGrid reads a Praat TextGrid in the long text format as written by
// MFA. Point tiers are ignored.
func ParseTextGrid(r io.Reader) (TextGrid, error) {
	tg := TextGrid{Tiers: make(map[string][]Interval)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var (
		tier       string
		inInterval bool
		cur        Interval
		haveMin    bool
		haveMax    bool
		lineNo     int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		switch {
		case strings.HasPrefix(line, "item ["):
			tier = ""
			inInterval = false
		case strings.HasPrefix(line, "intervals ["):
			inInterval = true
			cur = Interval{}
			haveMin, haveMax = false, false
		case strings.HasPrefix(line, "points ["):
			inInterval = false
		default:
			key, value, ok := splitAssignment(line)
			if !ok {
				continue
			}
			switch key {
			case "name":
				name, err := unquote(value)
				if err != nil {
					return tg, fmt.Errorf("line %d: %w", lineNo, err)
				}
				tier = name
			case "xmin", "xmax":
				if !inInterval {
					continue
				}
				v, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return tg, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
				}
				if key == "xmin" {
					cur.Start, haveMin = v, true
				} else {
					cur.End, haveMax = v, true
				}
			case "text":
				if !inInterval || tier == "" {
					continue
				}
				text, err := unquote(value)
				if err != nil {
					return tg, fmt.Errorf("line %d: %w", lineNo, err)
				}
				if !haveMin || !haveMax {
					return tg, fmt.Errorf("line %d: interval text before bounds", lineNo)
				}
				cur.Text = strings.TrimSpace(text)
				tg.Tiers[tier] = append(tg.Tiers[tier], cur)
				inInterval = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return tg, err
	}
	return tg, nil
}

// Labelled returns the tier's intervals with non-empty text.
func (tg TextGrid) Labelled(tier string) []Interval {
	var out []Interval
	for _, iv := range tg.Tiers[tier] {
		if iv.Text != "" {
			out = append(out, iv)
		}
	}
	return out
}

func splitAssignment(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// unquote decodes a Praat string literal, where a doubled quote escapes a
// quote.
func unquote(v string) (string, error) {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return "", fmt.Errorf("expected quoted string, got %q", v)
	}
	return strings.ReplaceAll(v[1:len(v)-1], `""`, `"`), nil
}
