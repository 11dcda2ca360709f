package conversation

import "regexp"

// Placeholders are matched with optional whitespace inside the braces, so
// {{storeName}}, {{ storeName }} and friends all render.
var (
	storeNameToken = regexp.MustCompile(`\{\{\s*storeName\s*\}\}`)
	orderCodeToken = regexp.MustCompile(`\{\{\s*orderCode\s*\}\}`)
)

// RenderPrompt substitutes every store-name and order-code placeholder in the
// template. A missing template renders empty; there are no other failure modes.
func RenderPrompt(tmpl, storeName, orderCode string) string {
	if tmpl == "" {
		return ""
	}
	out := storeNameToken.ReplaceAllString(tmpl, storeName)
	out = orderCodeToken.ReplaceAllString(out, orderCode)
	return out
}
