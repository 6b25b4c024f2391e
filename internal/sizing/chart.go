package sizing

import "strings"

// Group is a garment family sharing one size chart.
type Group string

const (
	GroupTops      Group = "tops"
	GroupOuterwear Group = "outerwear"
	GroupBottoms   Group = "bottoms"
	GroupDresses   Group = "dresses"
)

// Range is an inclusive measurement band in inches.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) contains(v float64) bool { return v >= r.Min && v <= r.Max }

func (r Range) mid() float64 { return (r.Min + r.Max) / 2 }

// Band is one row of a size chart.
type Band struct {
	Size  string `json:"size"`
	Bust  Range  `json:"bust"`
	Waist Range  `json:"waist"`
	Hips  Range  `json:"hips"`
}

// Chart is an ordered list of bands, smallest first.
type Chart struct {
	Group Group  `json:"group"`
	Bands []Band `json:"sizes"`
}

var charts = map[Group][]Band{
	GroupTops: {
		{"XS", Range{31, 33}, Range{24, 26}, Range{34, 36}},
		{"S", Range{33, 35}, Range{26, 28}, Range{36, 38}},
		{"M", Range{35, 37}, Range{28, 30}, Range{38, 40}},
		{"L", Range{37, 40}, Range{30, 33}, Range{40, 43}},
		{"XL", Range{40, 43}, Range{33, 36}, Range{43, 46}},
	},
	GroupOuterwear: {
		{"XS", Range{30, 32}, Range{23, 25}, Range{33, 35}},
		{"S", Range{32, 34}, Range{25, 27}, Range{35, 37}},
		{"M", Range{34, 36}, Range{27, 29}, Range{37, 39}},
		{"L", Range{36, 39}, Range{29, 32}, Range{39, 42}},
		{"XL", Range{39, 42}, Range{32, 35}, Range{42, 45}},
	},
	GroupBottoms: {
		{"XS", Range{30, 33}, Range{23, 25}, Range{33, 35}},
		{"S", Range{33, 35}, Range{25, 27}, Range{35, 37}},
		{"M", Range{35, 37}, Range{27, 29}, Range{37, 40}},
		{"L", Range{37, 40}, Range{29, 32}, Range{40, 43}},
		{"XL", Range{40, 43}, Range{32, 36}, Range{43, 46}},
	},
	GroupDresses: {
		{"XS", Range{31, 32}, Range{24, 25}, Range{34, 35}},
		{"S", Range{33, 34}, Range{26, 27}, Range{36, 37}},
		{"M", Range{35, 36}, Range{28, 29}, Range{38, 39}},
		{"L", Range{37, 39}, Range{30, 32}, Range{40, 42}},
		{"XL", Range{40, 42}, Range{33, 35}, Range{43, 45}},
	},
}

var categoryGroups = map[string]Group{
	"hoodies":     GroupOuterwear,
	"sweatshirts": GroupOuterwear,
	"jackets":     GroupOuterwear,
	"coats":       GroupOuterwear,
	"outerwear":   GroupOuterwear,
	"cardigans":   GroupOuterwear,
	"blazers":     GroupOuterwear,
	"knitwear":    GroupOuterwear,
	"pants":       GroupBottoms,
	"trousers":    GroupBottoms,
	"jeans":       GroupBottoms,
	"joggers":     GroupBottoms,
	"shorts":      GroupBottoms,
	"skirts":      GroupBottoms,
	"leggings":    GroupBottoms,
	"bottoms":     GroupBottoms,
	"dresses":     GroupDresses,
	"jumpsuits":   GroupDresses,
}

// GroupFor maps a category slug to its chart group. Unknown categories use tops.
func GroupFor(category string) Group {
	c := strings.ToLower(strings.TrimSpace(category))
	if g, ok := categoryGroups[c]; ok {
		return g
	}
	if g := Group(c); charts[g] != nil {
		return g
	}
	return GroupTops
}

// ChartFor returns a copy of the chart used for category.
func ChartFor(category string) Chart {
	g := GroupFor(category)
	bands := make([]Band, len(charts[g]))
	copy(bands, charts[g])
	return Chart{Group: g, Bands: bands}
}
