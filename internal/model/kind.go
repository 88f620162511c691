package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ElementKind is the raw element-type code reported by the automation API.
// Only a closed set of kinds has a protocol name; every other code is tagged
// as "unknown(<code>)" so new framework kinds never break clients.
type ElementKind uint

// Raw codes of the named kinds. Values follow the automation API's numbering.
const (
	KindAny             ElementKind = 0
	KindOther           ElementKind = 1
	KindApplication     ElementKind = 2
	KindWindow          ElementKind = 4
	KindButton          ElementKind = 9
	KindNavigationBar   ElementKind = 21
	KindTabBar          ElementKind = 22
	KindTable           ElementKind = 26
	KindSlider          ElementKind = 33
	KindSwitch          ElementKind = 40
	KindImage           ElementKind = 43
	KindScrollView      ElementKind = 46
	KindStaticText      ElementKind = 48
	KindTextField       ElementKind = 49
	KindSecureTextField ElementKind = 50
	KindCell            ElementKind = 75
)

// KindNames maps the named kinds to their wire names.
var KindNames = map[ElementKind]string{
	KindButton:          "button",
	KindStaticText:      "staticText",
	KindTextField:       "textField",
	KindSecureTextField: "secureTextField",
	KindImage:           "image",
	KindScrollView:      "scrollView",
	KindTable:           "table",
	KindCell:            "cell",
	KindSwitch:          "switch",
	KindSlider:          "slider",
	KindNavigationBar:   "navigationBar",
	KindTabBar:          "tabBar",
	KindOther:           "other",
	KindApplication:     "application",
	KindWindow:          "window",
}

var kindsByName = func() map[string]ElementKind {
	m := make(map[string]ElementKind, len(KindNames))
	for k, name := range KindNames {
		m[name] = k
	}
	return m
}()

// String returns the wire name of k, or "unknown(<code>)".
func (k ElementKind) String() string {
	if name, ok := KindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint(k))
}

// ParseKind converts a wire name back to a kind. It accepts named kinds, the
// "unknown(<code>)" form that String() produces, and a bare numeric code.
func ParseKind(s string) (ElementKind, error) {
	if k, ok := kindsByName[s]; ok {
		return k, nil
	}
	if code, err := strconv.ParseUint(s, 10, 32); err == nil {
		return ElementKind(code), nil
	}
	if strings.HasPrefix(s, "unknown(") && strings.HasSuffix(s, ")") {
		raw := strings.TrimSuffix(strings.TrimPrefix(s, "unknown("), ")")
		code, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid element kind %q: %w", s, err)
		}
		return ElementKind(code), nil
	}
	return 0, fmt.Errorf("unknown element kind: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ElementKind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
