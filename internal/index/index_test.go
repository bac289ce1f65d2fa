package index

import (
	"errors"
	"reflect"
	"testing"

	"github.com/indexforge/webindex/internal/codec"
)

func TestBuild(t *testing.T) {
	docs := map[int64]string{
		1: "hello world hello",
		2: "test hello",
	}
	idx := Build(docs)

	want := Index{
		"hello": {1, 2},
		"world": {1},
		"test":  {2},
	}
	if !reflect.DeepEqual(idx, want) {
		t.Fatalf("Build = %v, want %v", idx, want)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	if idx := Build(nil); len(idx) != 0 {
		t.Fatalf("Build(nil) = %v, want empty", idx)
	}
	idx := Build(map[int64]string{1: "", 2: "...!?"})
	if len(idx) != 0 {
		t.Fatalf("Build of term-free documents = %v, want empty", idx)
	}
}

func TestBuildPostingListInvariant(t *testing.T) {
	docs := map[int64]string{
		9: "shared solo9 shared shared",
		3: "shared solo3",
		7: "shared shared solo7 shared",
	}
	idx := Build(docs)
	if got, want := idx["shared"], (PostingList{3, 7, 9}); !reflect.DeepEqual(got, want) {
		t.Fatalf("postings for shared = %v, want %v", got, want)
	}
	for term, postings := range idx {
		if err := postings.Validate(); err != nil {
			t.Errorf("term %q postings %v violate invariant: %v", term, postings, err)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		postings PostingList
		ok       bool
	}{
		{"empty", nil, true},
		{"single", PostingList{1}, true},
		{"ascending", PostingList{1, 5, 9}, true},
		{"first id zero", PostingList{0, 3}, false},
		{"negative id", PostingList{-4, 3}, false},
		{"duplicate", PostingList{2, 2, 5}, false},
		{"descending", PostingList{5, 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.postings.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate(%v) = %v, want nil", tc.postings, err)
			}
			if !tc.ok && !errors.Is(err, codec.ErrInvalidInteger) {
				t.Fatalf("Validate(%v) = %v, want ErrInvalidInteger", tc.postings, err)
			}
		})
	}
}
