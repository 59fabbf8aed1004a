package export

import (
	"fmt"
	"regexp"
)

// Extension is the receipt file extension, dot included.
const Extension = ".xlsx"

// nonWord matches every run of characters that is neither a word
// character nor a hyphen.
var nonWord = regexp.MustCompile(`[^\w-]+`)

// Filename derives the receipt download name from the record's date and
// document name: safety-<date>-<sanitized-name>.xlsx. Sanitization
// collapses each run of non-word, non-hyphen characters to a single
// hyphen and performs no other normalization.
func Filename(date, name string) string {
	return fmt.Sprintf("safety-%s-%s%s", date, nonWord.ReplaceAllString(name, "-"), Extension)
}

func (x *XLSX) Filename(date, name string) string {
	return Filename(date, name)
}
