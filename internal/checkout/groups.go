package checkout

import (
	"sort"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/cart"
)

// Group is the set of cart items destined for one shipping address.
type Group struct {
	AddressID string
	Items     []cart.Item
}

// BuildGroups partitions cart items into one group per destination address.
// Single-address mode yields exactly one group with every item. Multi-address
// mode follows the product-to-address mappings; an item with no mapping entry
// fails the whole request unless allowPartial keeps the legacy behavior of
// dropping it. Groups come back sorted by address id so downstream steps that
// depend on "the first group" stay deterministic.
func BuildGroups(items []cart.Item, req Request, allowPartial bool) ([]Group, error) {
	if !req.MultiAddress {
		if req.AddressID == "" {
			return nil, E(KindInvalidAddress, "addressId is required")
		}
		return []Group{{AddressID: req.AddressID, Items: items}}, nil
	}

	if len(req.AddressMappings) == 0 {
		return nil, E(KindMissingAddressMap, "multi-address checkout requires addressMappings")
	}

	byProduct := make(map[string]string, len(req.AddressMappings))
	for _, m := range req.AddressMappings {
		if m.ProductID == "" || m.AddressID == "" {
			return nil, E(KindMissingAddressMap, "addressMappings entries need productId and addressId")
		}
		byProduct[m.ProductID] = m.AddressID
	}

	grouped := make(map[string][]cart.Item)
	for _, it := range items {
		addrID, ok := byProduct[it.ProductID]
		if !ok {
			if allowPartial {
				continue
			}
			return nil, E(KindMissingAddressMap, "cart item %s has no address mapping", it.ProductID)
		}
		grouped[addrID] = append(grouped[addrID], it)
	}

	if len(grouped) == 0 {
		return nil, E(KindMissingAddressMap, "no cart items matched the address mappings")
	}

	addressIDs := make([]string, 0, len(grouped))
	for id := range grouped {
		addressIDs = append(addressIDs, id)
	}
	sort.Strings(addressIDs)

	groups := make([]Group, 0, len(addressIDs))
	for _, id := range addressIDs {
		groups = append(groups, Group{AddressID: id, Items: grouped[id]})
	}
	return groups, nil
}
