package links

import (
	"errors"
	"testing"
)

func TestFormats(t *testing.T) {
	const id = "2f1c6a4e-0000-4000-8000-000000000001"
	cases := map[string]string{
		Payload(id): "www.sticqr.docpulp.com/qr_id/" + id,
		Claim(id):   "www.sticqr.docpulp.com/claim/" + id,
		Contact(id): "www.sticqr.docpulp.com/contact/" + id,
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestCheckIdentifier(t *testing.T) {
	valid := []string{"abc", "2f1c6a4e-0000-4000-8000-000000000001", "front desk"}
	for _, id := range valid {
		if err := CheckIdentifier(id); err != nil {
			t.Fatalf("CheckIdentifier(%q) = %v", id, err)
		}
	}
	invalid := []string{"", " ", " abc", "abc\n", "\tabc"}
	for _, id := range invalid {
		if err := CheckIdentifier(id); !errors.Is(err, ErrInvalidIdentifier) {
			t.Fatalf("CheckIdentifier(%q) = %v, want ErrInvalidIdentifier", id, err)
		}
	}
}
