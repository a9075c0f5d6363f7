// File path: internal/analyzer/picture.go
package analyzer

import "strings"

// InferType maps a PIC clause to its target type family. Evaluation is
// case-insensitive and the alphanumeric rule wins over the numeric one: a
// picture containing both X and 9 is a string.
func InferType(picture string) InferredType {
	pic := strings.ToUpper(picture)
	switch {
	case strings.Contains(pic, "X"):
		return TypeString
	case strings.Contains(pic, "9"):
		if strings.Contains(pic, "V") || strings.Contains(pic, ".") {
			return TypeDecimal
		}
		digits := digitPositions(pic)
		switch {
		case digits <= 4:
			return TypeShortInteger
		case digits <= 9:
			return TypeInteger
		default:
			return TypeLongInteger
		}
	case strings.Contains(pic, "S"):
		// Signed numeric with no explicit digit markers.
		return TypeInteger
	default:
		return TypeString
	}
}

// digitPositions counts the digit positions a picture declares, expanding
// repetition factors: "999" is three, "9(6)" is six, "9(3)9" is four.
func digitPositions(pic string) int {
	count := 0
	for i := 0; i < len(pic); i++ {
		if pic[i] != '9' {
			continue
		}
		if i+1 < len(pic) && pic[i+1] == '(' {
			end := strings.IndexByte(pic[i+1:], ')')
			if end > 1 {
				repeat := 0
				for _, r := range pic[i+2 : i+1+end] {
					if r < '0' || r > '9' {
						repeat = 0
						break
					}
					repeat = repeat*10 + int(r-'0')
				}
				if repeat > 0 {
					count += repeat
					i += end + 1
					continue
				}
			}
		}
		count++
	}
	return count
}
