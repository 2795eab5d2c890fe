package bonding_curve

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ValidateMetadataJSON checks an off-chain metadata document before a launch
// is accepted. The document must be valid JSON with non-empty name and
// symbol fields that agree with the on-curve length limits; social links are
// optional but length-capped.
func ValidateMetadataJSON(doc string) error {
	if !gjson.Valid(doc) {
		return fmt.Errorf("%w: metadata is not valid JSON", ErrInvalidMetadata)
	}
	root := gjson.Parse(doc)

	name := root.Get("name")
	if !name.Exists() || name.String() == "" || len(name.String()) > MaxNameLen {
		return fmt.Errorf("%w: metadata name must be 1-%d characters", ErrInvalidMetadata, MaxNameLen)
	}
	symbol := root.Get("symbol")
	if !symbol.Exists() || symbol.String() == "" || len(symbol.String()) > MaxSymbolLen {
		return fmt.Errorf("%w: metadata symbol must be 1-%d characters", ErrInvalidMetadata, MaxSymbolLen)
	}
	if desc := root.Get("description"); desc.Exists() && len(desc.String()) > 500 {
		return fmt.Errorf("%w: description exceeds 500 characters", ErrInvalidMetadata)
	}
	for _, field := range []string{"image", "external_url"} {
		if v := root.Get(field); v.Exists() && len(v.String()) > MaxURILen {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidMetadata, field, MaxURILen)
		}
	}
	for _, field := range []string{"twitter", "telegram", "website"} {
		if v := root.Get(field); v.Exists() && len(v.String()) > MaxSocialLen {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidMetadata, field, MaxSocialLen)
		}
	}
	return nil
}
