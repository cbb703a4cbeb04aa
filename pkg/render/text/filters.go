package text

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var filtersOnce sync.Once

func registerDefaultFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("thousands") {
			_ = pongo2.RegisterFilter("thousands", filterThousands)
		}
	})
}

// FormatThousands renders n with English digit grouping (1234567 -> 1,234,567).
func FormatThousands(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

func filterThousands(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch {
	case in.IsInteger():
		return pongo2.AsValue(FormatThousands(int64(in.Integer()))), nil
	case in.IsFloat():
		return pongo2.AsValue(FormatThousands(int64(math.Round(in.Float())))), nil
	case in.IsString():
		n, err := strconv.ParseInt(strings.TrimSpace(in.String()), 10, 64)
		if err != nil {
			return in, nil
		}
		return pongo2.AsValue(FormatThousands(n)), nil
	default:
		return in, nil
	}
}
