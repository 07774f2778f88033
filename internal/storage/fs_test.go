package storage

import (
	"io"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key, err := s.Put("questions/q1/figure.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if key != "questions/q1/figure.png" {
		t.Fatalf("canonical key = %q", key)
	}

	rc, err := s.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "png-bytes" {
		t.Fatalf("got %q", b)
	}

	u, err := s.SignedURL(key)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "file://") {
		t.Fatalf("signed url = %q", u)
	}
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "../secrets", "questions/../../etc/passwd", "/etc/passwd"} {
		if _, err := s.Put(key, strings.NewReader("x")); err == nil {
			t.Errorf("Put accepted key %q", key)
		}
		if _, err := s.Get(key); err == nil {
			t.Errorf("Get accepted key %q", key)
		}
	}
}
