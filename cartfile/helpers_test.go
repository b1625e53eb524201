package cartfile

import (
	"io/ioutil"
	"testing"

	"github.com/cartforge/cartforge"
)

func idFor(owner, repo string) cartforge.Identifier {
	return cartforge.Identifier{Owner: owner, Repo: repo}
}

func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}
