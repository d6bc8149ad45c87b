// Package links builds the URLs printed into QR payloads and returned by
// redirect resolution. The formats are shared with the public site and must
// not change.
package links

// Host is the public site that serves the claim and contact pages.
const Host = "www.sticqr.docpulp.com"

// Payload is the URL encoded into the QR symbol for an identifier.
func Payload(identifier string) string {
	return Host + "/qr_id/" + identifier
}

// Claim is the page an unclaimed code redirects to.
func Claim(identifier string) string {
	return Host + "/claim/" + identifier
}

// Contact is the page a claimed code redirects to.
func Contact(identifier string) string {
	return Host + "/contact/" + identifier
}
