package textutil

import "strings"

var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes a user-supplied base name safe to join onto an
// output directory. Path separators, colons and asterisks become dashes,
// other reserved characters are dropped, and a name made only of dots is
// rejected as empty.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}
