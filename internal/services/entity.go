package services

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/polarityio/ripe/internal/validate"
)

// EntityType tags the kind of identifier an Entity carries.
type EntityType string

// Entity types recognised by ParseEntity.
const (
	EntityIPv4 EntityType = "ipv4"
	EntityIPv6 EntityType = "ipv6"
	EntityCIDR EntityType = "cidr"
	EntityASN  EntityType = "asn"
)

// Entity is an identifier submitted for lookup. The registry client only
// reads Value; Type is informational.
type Entity struct {
	Value string     `json:"value"`
	Type  EntityType `json:"type"`
}

// ParseEntity classifies s as an IP address, CIDR block or ASN.
// ASNs are accepted case-insensitively ("as3333") and normalised to upper case.
func ParseEntity(s string) (Entity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Entity{}, fmt.Errorf("%w: empty input", ErrInvalidInput)
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		if addr.Is4() || addr.Is4In6() {
			return Entity{Value: s, Type: EntityIPv4}, nil
		}
		return Entity{Value: s, Type: EntityIPv6}, nil
	}
	if strings.Contains(s, "/") {
		if _, err := netip.ParsePrefix(s); err == nil {
			return Entity{Value: s, Type: EntityCIDR}, nil
		}
	}
	if validate.IsASN(s) {
		return Entity{Value: strings.ToUpper(s), Type: EntityASN}, nil
	}
	if validate.IsDomain(s) {
		return Entity{}, fmt.Errorf("%w: %q is a domain name; resolve it to an IP address first", ErrInvalidInput, s)
	}
	return Entity{}, fmt.Errorf("%w: must be an IP address, CIDR block or ASN (e.g. AS3333): %q", ErrInvalidInput, s)
}

// ParseEntities parses every input, stopping at the first invalid one.
func ParseEntities(inputs []string) ([]Entity, error) {
	entities := make([]Entity, 0, len(inputs))
	for _, in := range inputs {
		e, err := ParseEntity(in)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
