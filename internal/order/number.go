package order

import (
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	numberPrefix   = "NOW"
	numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	numberSuffix   = 6
)

// NumberGenerator produces order numbers of the form NOW-YYYY-MM-DD-XXXXXX.
type NumberGenerator struct {
	suffix func() string
}

func NewNumberGenerator() (*NumberGenerator, error) {
	gen, err := nanoid.CustomASCII(numberAlphabet, numberSuffix)
	if err != nil {
		return nil, err
	}
	return &NumberGenerator{suffix: gen}, nil
}

func (g *NumberGenerator) Next(now time.Time) string {
	return numberPrefix + "-" + now.UTC().Format("2006-01-02") + "-" + g.suffix()
}
