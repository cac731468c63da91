// merge.go - Merge explicit card text onto configured defaults.
package template

// MergeText overlays non-empty fields of over onto base.
func MergeText(base, over Text) Text {
	if over.Title != "" {
		base.Title = over.Title
	}
	if over.Subtitle != "" {
		base.Subtitle = over.Subtitle
	}
	if over.Price != "" {
		base.Price = over.Price
	}
	return base
}

// MergeVariants returns base with every variant of extra added, replacing
// entries that share an ID.
func MergeVariants(base *Catalog, extra ...Variant) *Catalog {
	out := NewCatalog(base.List()...)
	for _, v := range extra {
		out.Add(v)
	}
	return out
}
