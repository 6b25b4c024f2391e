package metaobject

import "strings"

// colorHex maps storefront color names (EN and TR) to swatch hex values.
var colorHex = map[string]string{
	"black":      "#000000",
	"siyah":      "#000000",
	"white":      "#FFFFFF",
	"beyaz":      "#FFFFFF",
	"off-white":  "#FAF9F6",
	"ecru":       "#F5F0E1",
	"ekru":       "#F5F0E1",
	"cream":      "#FFFDD0",
	"krem":       "#FFFDD0",
	"beige":      "#F5F5DC",
	"bej":        "#F5F5DC",
	"stone":      "#D6CFC4",
	"taş":        "#D6CFC4",
	"sand":       "#C2B280",
	"camel":      "#C19A6B",
	"brown":      "#8B4513",
	"kahverengi": "#8B4513",
	"chocolate":  "#5C3317",
	"grey":       "#808080",
	"gray":       "#808080",
	"gri":        "#808080",
	"anthracite": "#383E42",
	"antrasit":   "#383E42",
	"charcoal":   "#36454F",
	"navy":       "#000080",
	"lacivert":   "#000080",
	"blue":       "#0000FF",
	"mavi":       "#0000FF",
	"light blue": "#ADD8E6",
	"açık mavi":  "#ADD8E6",
	"indigo":     "#4B0082",
	"green":      "#008000",
	"yeşil":      "#008000",
	"khaki":      "#C3B091",
	"haki":       "#C3B091",
	"olive":      "#808000",
	"zeytin":     "#808000",
	"mint":       "#98FF98",
	"red":        "#FF0000",
	"kırmızı":    "#FF0000",
	"burgundy":   "#800020",
	"bordo":      "#800020",
	"pink":       "#FFC0CB",
	"pembe":      "#FFC0CB",
	"lilac":      "#C8A2C8",
	"lila":       "#C8A2C8",
	"purple":     "#800080",
	"mor":        "#800080",
	"yellow":     "#FFFF00",
	"sarı":       "#FFFF00",
	"mustard":    "#FFDB58",
	"hardal":     "#FFDB58",
	"orange":     "#FFA500",
	"turuncu":    "#FFA500",
}

// ColorHex returns the swatch hex for a color name, case-insensitively.
func ColorHex(name string) (string, bool) {
	hex, ok := colorHex[strings.ToLower(strings.TrimSpace(name))]
	return hex, ok
}
