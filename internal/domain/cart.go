package domain

import "sort"

// Cart maps product id -> size -> quantity. Every stored quantity is
// positive; zero entries and emptied products are pruned on write.
type Cart map[string]map[string]int

func (c Cart) Quantity(productID, size string) int {
	return c[productID][size]
}

// Set stores qty for (productID, size); qty <= 0 removes the entry.
func (c Cart) Set(productID, size string, qty int) {
	if qty <= 0 {
		c.Remove(productID, size)
		return
	}
	sizes, ok := c[productID]
	if !ok {
		sizes = make(map[string]int)
		c[productID] = sizes
	}
	sizes[size] = qty
}

func (c Cart) Remove(productID, size string) {
	sizes, ok := c[productID]
	if !ok {
		return
	}
	delete(sizes, size)
	if len(sizes) == 0 {
		delete(c, productID)
	}
}

// Prune drops non-positive quantities and empty products.
func (c Cart) Prune() {
	for pid, sizes := range c {
		for size, q := range sizes {
			if q <= 0 {
				delete(sizes, size)
			}
		}
		if len(sizes) == 0 {
			delete(c, pid)
		}
	}
}

func (c Cart) IsEmpty() bool {
	for _, sizes := range c {
		if len(sizes) > 0 {
			return false
		}
	}
	return true
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for pid, sizes := range c {
		cp := make(map[string]int, len(sizes))
		for size, q := range sizes {
			cp[size] = q
		}
		out[pid] = cp
	}
	return out
}

// ProductIDs returns the product ids in sorted order.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for pid := range c {
		ids = append(ids, pid)
	}
	sort.Strings(ids)
	return ids
}

// Sizes returns the sizes held for a product in sorted order.
func (c Cart) Sizes(productID string) []string {
	sizes := make([]string, 0, len(c[productID]))
	for size := range c[productID] {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)
	return sizes
}
