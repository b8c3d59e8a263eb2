package cache

import "fmt"

const popularKeyPrefix = "blog:popular:%s"

// SidebarKey holds the popular posts and tags rendered on every page.
var SidebarKey = PopularKey("sidebar")

// PopularKey is the key for a popularity-ranked dataset.
func PopularKey(kind string) string {
	return fmt.Sprintf(popularKeyPrefix, kind)
}

// PopularKeys lists every key that depends on likes, tags or comment counts.
func PopularKeys() []string {
	return []string{SidebarKey}
}
