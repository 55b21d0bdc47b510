package mpm

import (
	"sort"
	"testing"
)

func idsOf(q *MatchQueue) []uint32 {
	out := make([]uint32, q.Len())
	for i := range out {
		out[i] = q.At(i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestAhoCorasickMatcherBasic(t *testing.T) {
	m := NewAhoCorasickMatcher()
	if err := m.AddPattern([]byte("GET "), 0, 4, 0, false); err != nil {
		t.Fatal(err)
	}
	if err := m.AddPattern([]byte("POST "), 0, 5, 1, false); err != nil {
		t.Fatal(err)
	}
	if err := m.Prepare(); err != nil {
		t.Fatal(err)
	}

	ts := m.InitThreadState()
	q := NewMatchQueue(4)

	n, err := m.Search(ts, q, []byte("GET /index.html HTTP/1.1\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || idsOf(q)[0] != 0 {
		t.Fatalf("Search() matched %v, want [0]", idsOf(q))
	}

	q.Reset()
	n, err = m.Search(ts, q, []byte("POST /submit HTTP/1.1\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || idsOf(q)[0] != 1 {
		t.Fatalf("Search() matched %v, want [1]", idsOf(q))
	}

	q.Reset()
	n, err = m.Search(ts, q, []byte("HTTP/1.1 200 OK\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("Search() matched %v, want none", idsOf(q))
	}
}

func TestAhoCorasickMatcherNoCase(t *testing.T) {
	m := NewAhoCorasickMatcher()
	if err := m.AddPattern([]byte("ssh-"), 0, 4, 0, true); err != nil {
		t.Fatal(err)
	}
	if err := m.Prepare(); err != nil {
		t.Fatal(err)
	}

	ts := m.InitThreadState()
	q := NewMatchQueue(1)

	if _, err := m.Search(ts, q, []byte("SSH-2.0-OpenSSH_8.9\r\n")); err != nil {
		t.Fatal(err)
	}
	if q.Len() != 1 || q.At(0) != 0 {
		t.Fatalf("Search() matched %v, want [0] (case-insensitive)", idsOf(q))
	}
}

func TestAhoCorasickMatcherAddAfterPrepare(t *testing.T) {
	m := NewAhoCorasickMatcher()
	if err := m.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := m.AddPattern([]byte("x"), 0, 1, 0, false); err != ErrAlreadyPrepared {
		t.Fatalf("AddPattern after Prepare = %v, want ErrAlreadyPrepared", err)
	}
}

func TestAhoCorasickMatcherSearchBeforePrepare(t *testing.T) {
	m := NewAhoCorasickMatcher()
	q := NewMatchQueue(1)
	if _, err := m.Search(m.InitThreadState(), q, []byte("x")); err != ErrNotPrepared {
		t.Fatalf("Search before Prepare = %v, want ErrNotPrepared", err)
	}
}
