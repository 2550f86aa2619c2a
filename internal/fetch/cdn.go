package fetch

import (
	"net/url"
	"strings"

	"github.com/blackwell-systems/crxledger/internal/config"
)

// VendorURL builds the vendor CDN download URL for the latest published
// version of extensionID. Query parameters keep their fixed order. The x
// trailer is already percent-encoded and is appended verbatim.
func VendorURL(cdn config.CDNConfig, extensionID string) string {
	params := []struct{ key, value string }{
		{"response", cdn.Response},
		{"os", cdn.OS},
		{"arch", cdn.Arch},
		{"os_arch", cdn.OSArch},
		{"nacl_arch", cdn.NaclArch},
		{"prod", cdn.Prod},
		{"prodchannel", cdn.ProdChannel},
		{"prodversion", cdn.ProdVersion},
		{"lang", cdn.Lang},
		{"acceptformat", cdn.AcceptFormat},
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(cdn.BaseURL, "?"))
	b.WriteByte('?')
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	b.WriteString("&x=id%3D")
	b.WriteString(extensionID)
	b.WriteString("%26installsource%3Dondemand%26uc")
	return b.String()
}
