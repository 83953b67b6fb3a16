package entity

// Theme is a named target playlist with a short style description. Themes are
// identified by their stable key, never by display order.
type Theme struct {
	Key         string
	Name        string
	Description string
	Shortcut    string
}

// ThemeCatalog is the fixed set of themes known at session start.
type ThemeCatalog struct {
	themes []Theme
	index  map[string]Theme
}

func NewThemeCatalog(themes []Theme) *ThemeCatalog {
	index := make(map[string]Theme, len(themes))
	for _, t := range themes {
		index[t.Key] = t
	}
	return &ThemeCatalog{
		themes: themes,
		index:  index,
	}
}

func (c *ThemeCatalog) Get(key string) (Theme, bool) {
	t, ok := c.index[key]
	return t, ok
}

func (c *ThemeCatalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// All returns the catalog in its original display order.
func (c *ThemeCatalog) All() []Theme {
	return c.themes
}

func (c *ThemeCatalog) Len() int {
	return len(c.themes)
}
