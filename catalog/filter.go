package catalog

// Filter restricts which textures take part. The zero value allows every
// texture.
type Filter struct {
	allow map[string]struct{}
	deny  map[string]struct{}
}

func set(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// AllowList returns a filter that only allows the named textures.
func AllowList(names ...string) Filter {
	return Filter{allow: set(names)}
}

// DenyList returns a filter that allows everything except the named
// textures.
func DenyList(names ...string) Filter {
	return Filter{deny: set(names)}
}

// Allows reports whether the texture may be used.
func (f Filter) Allows(texture string) bool {
	if f.allow != nil {
		_, ok := f.allow[texture]
		return ok
	}
	_, ok := f.deny[texture]
	return !ok
}
