package ledger

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []Record{
		{ID: 1, Username: "alice", Password: "pa ss", Port: "1080", Interface: "eth0"},
		{ID: 3, Username: "bob", Password: "", Port: "8080", Interface: "wg2"},
	}
	data, err := Encode(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", got, records)
	}
}

func TestDecodeEmptyAndHeaderOnly(t *testing.T) {
	for _, in := range []string{"", "id,username,password,port,interface\n"} {
		got, err := Decode(strings.NewReader(in))
		if err != nil {
			t.Fatalf("Decode(%q): %v", in, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("Decode(%q) = %#v", in, got)
		}
	}
}

func TestDecodeHeaderOrderAndShortRows(t *testing.T) {
	in := "interface,port,id,username,password\neth0,1080,2,alice,pw\nlo,22,5\n"
	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{
		{ID: 2, Username: "alice", Password: "pw", Port: "1080", Interface: "eth0"},
		{ID: 5, Port: "22", Interface: "lo"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"plain":       "plain",
		"  spaced  ":  "spaced",
		`a,b"c`:       "abc",
		` "," `:       "",
		"in ner":      "in ner",
		"\tuser\n":    "user",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePort(t *testing.T) {
	good := map[string]string{"1": "1", "65535": "65535", " 443 ": "443", "0080": "80"}
	for in, want := range good {
		got, err := ParsePort(in)
		if err != nil || got != want {
			t.Errorf("ParsePort(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "0", "-1", "65536", "80a", "1e3"} {
		if _, err := ParsePort(in); err == nil {
			t.Errorf("ParsePort(%q) should fail", in)
		}
	}
}
