// catalog.go - Variant lookup by ID or name.
package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xob0t/GoCard/pkg/errors"
)

// Catalog is an ordered set of variants keyed by ID. It is not safe for
// concurrent mutation; build it once and share it read-only.
type Catalog struct {
	variants []Variant
	byID     map[int]int
}

// NewCatalog creates a catalog holding vs. Later entries replace earlier ones
// with the same ID.
func NewCatalog(vs ...Variant) *Catalog {
	c := &Catalog{byID: make(map[int]int)}
	for _, v := range vs {
		c.Add(v)
	}
	return c
}

// BuiltinCatalog returns a catalog of the built-in variants.
func BuiltinCatalog() *Catalog {
	return NewCatalog(Builtin()...)
}

// Add inserts v, replacing any variant with the same ID.
func (c *Catalog) Add(v Variant) {
	if i, ok := c.byID[v.ID]; ok {
		c.variants[i] = v
		return
	}
	c.byID[v.ID] = len(c.variants)
	c.variants = append(c.variants, v)
}

// Len returns the number of variants.
func (c *Catalog) Len() int { return len(c.variants) }

// Get returns the variant with the given ID.
func (c *Catalog) Get(id int) (Variant, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Variant{}, false
	}
	return c.variants[i], true
}

// Lookup resolves a numeric ID or a case-insensitive name.
func (c *Catalog) Lookup(key string) (Variant, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.Atoi(key); err == nil {
		if v, ok := c.Get(id); ok {
			return v, nil
		}
	}
	for _, v := range c.variants {
		if strings.EqualFold(v.Name, key) {
			return v, nil
		}
	}
	return Variant{}, errors.New(errors.ErrCodeNotFound, "unknown variant %q", key)
}

// List returns all variants sorted by ID.
func (c *Catalog) List() []Variant {
	out := append([]Variant(nil), c.variants...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Select resolves a list of keys; "all" or an empty list selects every
// variant. Ranges such as "2-5" are accepted.
func (c *Catalog) Select(keys []string) ([]Variant, error) {
	if len(keys) == 0 {
		return c.List(), nil
	}
	var out []Variant
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if strings.EqualFold(k, "all") {
			return c.List(), nil
		}
		if lo, hi, ok := parseRange(k); ok {
			for id := lo; id <= hi; id++ {
				v, found := c.Get(id)
				if !found {
					return nil, errors.New(errors.ErrCodeNotFound, "unknown variant %d in range %q", id, k)
				}
				out = append(out, v)
			}
			continue
		}
		v, err := c.Lookup(k)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseRange(s string) (lo, hi int, ok bool) {
	a, b, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(a))
	hi, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// Format returns a human-readable listing of the catalog.
func (c *Catalog) Format() string {
	var sb strings.Builder
	for _, v := range c.List() {
		fmt.Fprintf(&sb, "%3d  %-16s %-9s %s\n", v.ID, v.Name, v.Background.Kind, v.Description)
		if pools := v.Pools(); len(pools) > 0 {
			fmt.Fprintf(&sb, "     %-16s needs pools: %s\n", "", strings.Join(pools, ", "))
		}
	}
	return sb.String()
}
