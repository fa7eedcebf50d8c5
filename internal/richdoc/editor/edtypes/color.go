package edtypes

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

var (
	colorReg = regexp.MustCompile(`[rgba()#\s"]`)
)

var ErrUnsupportedColor = errors.New("unsupported color format")

type Color color.RGBA

// ParseColor разбирает цвет в форматах #rgb, #rrggbb, #rrggbbaa, rgb(r,g,b) и rgba(r,g,b,a).
// Цвет без альфа-канала считается непрозрачным.
func ParseColor(raw string) (Color, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 {
		return Color{}, ErrUnsupportedColor
	}
	isDecRGB := strings.Contains(raw, "rgb")
	isHex := raw[0] == '#' || raw[1] == '#'
	if isDecRGB {
		raw = colorReg.ReplaceAllString(raw, "")
		c := Color{A: 255}
		parts := strings.Split(raw, ",")
		if len(parts) < 3 || len(parts) > 4 {
			return Color{}, ErrUnsupportedColor
		}
		for i, n := range parts {
			nn, err := strconv.ParseUint(n, 10, 8)
			if err != nil {
				return Color{}, err
			}

			switch i {
			case 0:
				c.R = uint8(nn)
			case 1:
				c.G = uint8(nn)
			case 2:
				c.B = uint8(nn)
			case 3:
				c.A = uint8(nn)
			}
		}
		return c, nil
	} else if isHex {
		raw = strings.TrimPrefix(strings.Trim(raw, `"`), "#")
		if len(raw) == 3 {
			raw = string([]byte{raw[0], raw[0], raw[1], raw[1], raw[2], raw[2]})
		}
		if len(raw) != 6 && len(raw) != 8 {
			return Color{}, ErrUnsupportedColor
		}
		b, err := hex.DecodeString(raw)
		if err != nil {
			return Color{}, err
		}
		c := Color{
			R: b[0],
			G: b[1],
			B: b[2],
			A: 255,
		}
		if len(b) > 3 {
			c.A = b[3]
		}
		return c, nil
	}
	return Color{}, ErrUnsupportedColor
}

// MustParseColor используется для статичных значений
func MustParseColor(raw string) *Color {
	c, err := ParseColor(raw)
	if err != nil {
		panic(err)
	}
	return &c
}

// Hex возвращает #rrggbb для непрозрачного цвета и #rrggbbaa иначе
func (c Color) Hex() string {
	if c.A == 255 {
		return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
	}
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B, c.A})
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, "%q", c.Hex()), nil
}

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}

	cc, err := ParseColor(strings.Trim(string(data), `"`))
	*c = cc

	return err
}

// EqualColor сравнивает необязательные цвета
func EqualColor(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
